// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/models"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
)

// UserService 处理用户相关的业务逻辑
type UserService struct {
	Store storage.Store
}

// NewUserService 创建用户服务
func NewUserService(store storage.Store) *UserService {
	return &UserService{Store: store}
}

// RegisterInput 注册请求参数
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate 校验注册参数
func (in *RegisterInput) Validate() error {
	if strings.TrimSpace(in.Username) == "" {
		return apperrors.NewValidationError("username 不能为空", nil)
	}
	if strings.TrimSpace(in.Email) == "" {
		return apperrors.NewValidationError("email 不能为空", nil)
	}
	return nil
}

// CreateUser 创建新用户
func (s *UserService) CreateUser(ctx context.Context, in *RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:          newEntityID("user"),
		Username:    strings.TrimSpace(in.Username),
		Email:       strings.TrimSpace(in.Email),
		CreatedAt:   now,
		LastLogin:   now,
		LastUpdated: now,
	}

	if err := s.Store.CreateUser(ctx, user); err != nil {
		return nil, apperrors.NewProcessingError("保存用户数据失败", err)
	}
	return user, nil
}

// GetUser 获取用户信息
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("用户不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("读取用户数据失败", err)
	}
	return user, nil
}

// TouchLogin 更新用户最近登录时间
func (s *UserService) TouchLogin(ctx context.Context, userID string) error {
	err := s.Store.TouchUserLogin(ctx, userID, time.Now())
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewNotFoundError("用户不存在", nil)
	}
	if err != nil {
		return apperrors.NewProcessingError("更新用户数据失败", err)
	}
	return nil
}

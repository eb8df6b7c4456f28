// internal/services/story_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/auth"
	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/models"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
	"github.com/Corphon/StoryPlannerMCP/internal/utils"
)

// StoryService 管理故事根实体的增改查
// 每个操作都遵循同一条流水线：身份 → 校验 → 所有权 → 单条存储语句，
// 任何一道门失败立即终止，不会留下部分写入
type StoryService struct {
	Store     storage.Store
	Ownership *OwnershipService
}

// NewStoryService 创建故事服务
func NewStoryService(store storage.Store, ownership *OwnershipService) *StoryService {
	return &StoryService{
		Store:     store,
		Ownership: ownership,
	}
}

// StoryListResult 故事列表结果
type StoryListResult struct {
	Items []models.Story `json:"items"`
	Total int            `json:"total"`
}

// CreateStory 创建故事，所有者为当前用户且不可变更
func (s *StoryService) CreateStory(ctx context.Context, in *CreateStoryInput) (*models.Story, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	story := &models.Story{
		ID:             newEntityID("story"),
		UserID:         userID,
		Title:          in.Title,
		Logline:        in.Logline,
		Genre:          in.Genre,
		TargetAudience: in.TargetAudience,
		Status:         in.Status,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.CreateStory(ctx, story); err != nil {
		return nil, apperrors.NewProcessingError("保存故事失败", err)
	}

	utils.GetLogger().Info("story created", map[string]interface{}{
		"story_id": story.ID,
		"user_id":  userID,
	})

	return story, nil
}

// UpdateStory 对故事进行部分字段更新，只改动请求携带的字段
func (s *StoryService) UpdateStory(ctx context.Context, in *UpdateStoryInput) (*models.Story, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Ownership.ResolveStory(ctx, in.ID, userID); err != nil {
		return nil, err
	}

	patch := models.StoryPatch{
		Title:          in.Title,
		Logline:        in.Logline,
		Genre:          in.Genre,
		TargetAudience: in.TargetAudience,
		Status:         in.Status,
		Notes:          in.Notes,
	}

	story, err := s.Store.UpdateStory(ctx, in.ID, patch, time.Now())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("故事不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("更新故事失败", err)
	}
	return story, nil
}

// ListStories 列出当前用户的全部故事
func (s *StoryService) ListStories(ctx context.Context) (*StoryListResult, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	stories, err := s.Store.ListStoriesByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewProcessingError("查询故事列表失败", err)
	}

	return &StoryListResult{
		Items: stories,
		Total: len(stories),
	}, nil
}

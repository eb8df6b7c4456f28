// internal/services/act_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/auth"
	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/models"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
)

// ActService 管理故事内幕的增删改查
type ActService struct {
	Store     storage.Store
	Ownership *OwnershipService
}

// NewActService 创建幕服务
func NewActService(store storage.Store, ownership *OwnershipService) *ActService {
	return &ActService{
		Store:     store,
		Ownership: ownership,
	}
}

// ActListResult 幕列表结果
type ActListResult struct {
	Items []models.Act `json:"items"`
	Total int          `json:"total"`
}

// CreateAct 在指定故事内创建幕
func (s *ActService) CreateAct(ctx context.Context, in *CreateActInput) (*models.Act, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Ownership.ResolveStory(ctx, in.StoryID, userID); err != nil {
		return nil, err
	}

	act := &models.Act{
		ID:         newEntityID("act"),
		StoryID:    in.StoryID,
		OrderIndex: in.orderIndex(),
		Title:      in.Title,
		Summary:    in.Summary,
		CreatedAt:  time.Now(),
	}

	if err := s.Store.CreateAct(ctx, act); err != nil {
		return nil, apperrors.NewProcessingError("保存幕失败", err)
	}
	return act, nil
}

// UpdateAct 对幕进行部分字段更新
func (s *ActService) UpdateAct(ctx context.Context, in *UpdateActInput) (*models.Act, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Ownership.ResolveAct(ctx, in.ID, in.StoryID, userID); err != nil {
		return nil, err
	}

	patch := models.ActPatch{
		OrderIndex: in.OrderIndex,
		Title:      in.Title,
		Summary:    in.Summary,
	}

	act, err := s.Store.UpdateActInStory(ctx, in.ID, in.StoryID, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("幕不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("更新幕失败", err)
	}
	return act, nil
}

// DeleteAct 在指定故事内删除幕
func (s *ActService) DeleteAct(ctx context.Context, in *DeleteActInput) error {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.Ownership.ResolveAct(ctx, in.ID, in.StoryID, userID); err != nil {
		return err
	}

	err = s.Store.DeleteActInStory(ctx, in.ID, in.StoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewNotFoundError("幕不存在", nil)
	}
	if err != nil {
		return apperrors.NewProcessingError("删除幕失败", err)
	}
	return nil
}

// ListActs 列出某故事的全部幕
func (s *ActService) ListActs(ctx context.Context, in *ListActsInput) (*ActListResult, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Ownership.ResolveStory(ctx, in.StoryID, userID); err != nil {
		return nil, err
	}

	acts, err := s.Store.ListActsByStory(ctx, in.StoryID)
	if err != nil {
		return nil, apperrors.NewProcessingError("查询幕列表失败", err)
	}

	return &ActListResult{
		Items: acts,
		Total: len(acts),
	}, nil
}

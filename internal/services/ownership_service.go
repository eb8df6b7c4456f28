// internal/services/ownership_service.go
package services

import (
	"context"
	"errors"

	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/models"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
)

// OwnershipService 证明目标实体（或请求引用的上级实体）传递地属于当前用户
//
// 校验始终从故事根开始逐级走链，绝不复用缓存或此前校验过的对象：
// 请求携带的上级ID可能与实体当前存储的上级不同（换挂、伪造、过期），
// 每次请求都要对它实际引用的那组ID重新证明完整链条。
// "不存在"与"存在但不属于当前用户"统一返回未找到错误，不泄露他人数据。
type OwnershipService struct {
	Store storage.Store
}

// NewOwnershipService 创建所有权校验服务
func NewOwnershipService(store storage.Store) *OwnershipService {
	return &OwnershipService{Store: store}
}

// ResolveStory 校验故事存在且属于指定用户
func (s *OwnershipService) ResolveStory(ctx context.Context, storyID, userID string) (*models.Story, error) {
	story, err := s.Store.GetStory(ctx, storyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("故事不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("读取故事失败", err)
	}
	if story.UserID != userID {
		return nil, apperrors.NewNotFoundError("故事不存在", nil)
	}
	return story, nil
}

// ResolveAct 先校验故事所有权，再确认幕存在于该故事内
func (s *OwnershipService) ResolveAct(ctx context.Context, actID, storyID, userID string) (*models.Act, error) {
	if _, err := s.ResolveStory(ctx, storyID, userID); err != nil {
		return nil, err
	}

	act, err := s.Store.GetActInStory(ctx, actID, storyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("幕不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("读取幕失败", err)
	}
	return act, nil
}

// ResolveChapter 先校验故事所有权，再确认章节存在于该故事内
func (s *OwnershipService) ResolveChapter(ctx context.Context, chapterID, storyID, userID string) (*models.Chapter, error) {
	if _, err := s.ResolveStory(ctx, storyID, userID); err != nil {
		return nil, err
	}

	chapter, err := s.Store.GetChapterInStory(ctx, chapterID, storyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("章节不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("读取章节失败", err)
	}
	return chapter, nil
}

// ResolveScene 先校验故事所有权，再确认场景存在于该故事内
func (s *OwnershipService) ResolveScene(ctx context.Context, sceneID, storyID, userID string) (*models.Scene, error) {
	if _, err := s.ResolveStory(ctx, storyID, userID); err != nil {
		return nil, err
	}

	scene, err := s.Store.GetSceneInStory(ctx, sceneID, storyID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("场景不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("读取场景失败", err)
	}
	return scene, nil
}

// internal/services/scene_service.go
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

// SceneService 管理故事内场景的增删改查
// 场景是叶级内容单元，可选地挂在某一章节之下；
// 引用 chapter_id 的请求必须先证明该章节在同一故事内
type SceneService struct {
	Store     storage.Store
	Ownership *OwnershipService
}

// NewSceneService 创建场景服务
func NewSceneService(store storage.Store, ownership *OwnershipService) *SceneService {
	return &SceneService{
		Store:     store,
		Ownership: ownership,
	}
}

// SceneListResult 场景列表结果
type SceneListResult struct {
	Items []models.Scene `json:"items"`
	Total int            `json:"total"`
}

// CreateScene 在指定故事内创建场景
func (s *SceneService) CreateScene(ctx context.Context, in *CreateSceneInput) (*models.Scene, error) {
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
	if in.ChapterID != nil {
		if _, err := s.Ownership.ResolveChapter(ctx, *in.ChapterID, in.StoryID, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	scene := &models.Scene{
		ID:         newEntityID("scene"),
		StoryID:    in.StoryID,
		ChapterID:  in.ChapterID,
		OrderIndex: in.orderIndex(),
		Setting:    in.Setting,
		Goal:       in.Goal,
		Conflict:   in.Conflict,
		Outcome:    in.Outcome,
		Content:    in.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Store.CreateScene(ctx, scene); err != nil {
		return nil, apperrors.NewProcessingError("保存场景失败", err)
	}
	return scene, nil
}

// UpdateScene 对场景进行部分字段更新
func (s *SceneService) UpdateScene(ctx context.Context, in *UpdateSceneInput) (*models.Scene, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Ownership.ResolveScene(ctx, in.ID, in.StoryID, userID); err != nil {
		return nil, err
	}
	if in.ChapterID != nil {
		if _, err := s.Ownership.ResolveChapter(ctx, *in.ChapterID, in.StoryID, userID); err != nil {
			return nil, err
		}
	}

	patch := models.ScenePatch{
		ChapterID:  in.ChapterID,
		OrderIndex: in.OrderIndex,
		Setting:    in.Setting,
		Goal:       in.Goal,
		Conflict:   in.Conflict,
		Outcome:    in.Outcome,
		Content:    in.Content,
	}

	scene, err := s.Store.UpdateSceneInStory(ctx, in.ID, in.StoryID, patch, time.Now())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("场景不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("更新场景失败", err)
	}
	return scene, nil
}

// DeleteScene 在指定故事内删除场景
func (s *SceneService) DeleteScene(ctx context.Context, in *DeleteSceneInput) error {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.Ownership.ResolveScene(ctx, in.ID, in.StoryID, userID); err != nil {
		return err
	}

	err = s.Store.DeleteSceneInStory(ctx, in.ID, in.StoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewNotFoundError("场景不存在", nil)
	}
	if err != nil {
		return apperrors.NewProcessingError("删除场景失败", err)
	}
	return nil
}

// ListScenes 列出某故事的场景，可按章节收窄
func (s *SceneService) ListScenes(ctx context.Context, in *ListScenesInput) (*SceneListResult, error) {
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

	var scenes []models.Scene
	if in.ChapterID != nil {
		if _, err := s.Ownership.ResolveChapter(ctx, *in.ChapterID, in.StoryID, userID); err != nil {
			return nil, err
		}
		scenes, err = s.Store.ListScenesByStoryAndChapter(ctx, in.StoryID, *in.ChapterID)
	} else {
		scenes, err = s.Store.ListScenesByStory(ctx, in.StoryID)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("查询场景列表失败", err)
	}

	return &SceneListResult{
		Items: scenes,
		Total: len(scenes),
	}, nil
}

// internal/services/chapter_service.go
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

// ChapterService 管理故事内章节的增删改查
// 章节可选地挂在某一幕之下；凡是请求引用了 act_id，
// 都要先证明该幕属于同一故事且故事属于当前用户，才允许挂接
type ChapterService struct {
	Store     storage.Store
	Ownership *OwnershipService
}

// NewChapterService 创建章节服务
func NewChapterService(store storage.Store, ownership *OwnershipService) *ChapterService {
	return &ChapterService{
		Store:     store,
		Ownership: ownership,
	}
}

// ChapterListResult 章节列表结果
type ChapterListResult struct {
	Items []models.Chapter `json:"items"`
	Total int              `json:"total"`
}

// CreateChapter 在指定故事内创建章节
func (s *ChapterService) CreateChapter(ctx context.Context, in *CreateChapterInput) (*models.Chapter, error) {
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
	// 请求要求挂接到幕时，重新证明幕在同一故事内
	if in.ActID != nil {
		if _, err := s.Ownership.ResolveAct(ctx, *in.ActID, in.StoryID, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	chapter := &models.Chapter{
		ID:           newEntityID("chapter"),
		StoryID:      in.StoryID,
		ActID:        in.ActID,
		OrderIndex:   in.orderIndex(),
		Title:        in.Title,
		POVCharacter: in.POVCharacter,
		Summary:      in.Summary,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.CreateChapter(ctx, chapter); err != nil {
		return nil, apperrors.NewProcessingError("保存章节失败", err)
	}
	return chapter, nil
}

// UpdateChapter 对章节进行部分字段更新
func (s *ChapterService) UpdateChapter(ctx context.Context, in *UpdateChapterInput) (*models.Chapter, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Ownership.ResolveChapter(ctx, in.ID, in.StoryID, userID); err != nil {
		return nil, err
	}
	// 换挂到另一幕同样要走完整的链条校验
	if in.ActID != nil {
		if _, err := s.Ownership.ResolveAct(ctx, *in.ActID, in.StoryID, userID); err != nil {
			return nil, err
		}
	}

	patch := models.ChapterPatch{
		ActID:        in.ActID,
		OrderIndex:   in.OrderIndex,
		Title:        in.Title,
		POVCharacter: in.POVCharacter,
		Summary:      in.Summary,
	}

	chapter, err := s.Store.UpdateChapterInStory(ctx, in.ID, in.StoryID, patch, time.Now())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewNotFoundError("章节不存在", nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("更新章节失败", err)
	}
	return chapter, nil
}

// DeleteChapter 在指定故事内删除章节
func (s *ChapterService) DeleteChapter(ctx context.Context, in *DeleteChapterInput) error {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.Ownership.ResolveChapter(ctx, in.ID, in.StoryID, userID); err != nil {
		return err
	}

	err = s.Store.DeleteChapterInStory(ctx, in.ID, in.StoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NewNotFoundError("章节不存在", nil)
	}
	if err != nil {
		return apperrors.NewProcessingError("删除章节失败", err)
	}
	return nil
}

// ListChapters 列出某故事的章节，可按幕收窄
func (s *ChapterService) ListChapters(ctx context.Context, in *ListChaptersInput) (*ChapterListResult, error) {
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

	var chapters []models.Chapter
	if in.ActID != nil {
		if _, err := s.Ownership.ResolveAct(ctx, *in.ActID, in.StoryID, userID); err != nil {
			return nil, err
		}
		chapters, err = s.Store.ListChaptersByStoryAndAct(ctx, in.StoryID, *in.ActID)
	} else {
		chapters, err = s.Store.ListChaptersByStory(ctx, in.StoryID)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("查询章节列表失败", err)
	}

	return &ChapterListResult{
		Items: chapters,
		Total: len(chapters),
	}, nil
}

// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/models"
)

// ErrNotFound 表示目标行不存在
// 调用方（服务层）负责把它映射为对外的 not_found 错误
var ErrNotFound = errors.New("记录不存在")

// Store 规划数据的持久化接口
// 每个实体一组显式的类型化查询方法，不做动态拼装的通用过滤器；
// 子实体的读取/更新/删除都以 (id, story_id) 联合定位，保证不会跨故事命中
type Store interface {
	// 用户
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	TouchUserLogin(ctx context.Context, id string, at time.Time) error

	// 故事
	CreateStory(ctx context.Context, story *models.Story) error
	GetStory(ctx context.Context, id string) (*models.Story, error)
	UpdateStory(ctx context.Context, id string, patch models.StoryPatch, updatedAt time.Time) (*models.Story, error)
	ListStoriesByUser(ctx context.Context, userID string) ([]models.Story, error)

	// 幕
	CreateAct(ctx context.Context, act *models.Act) error
	GetActInStory(ctx context.Context, id, storyID string) (*models.Act, error)
	UpdateActInStory(ctx context.Context, id, storyID string, patch models.ActPatch) (*models.Act, error)
	DeleteActInStory(ctx context.Context, id, storyID string) error
	ListActsByStory(ctx context.Context, storyID string) ([]models.Act, error)

	// 章节
	CreateChapter(ctx context.Context, chapter *models.Chapter) error
	GetChapterInStory(ctx context.Context, id, storyID string) (*models.Chapter, error)
	UpdateChapterInStory(ctx context.Context, id, storyID string, patch models.ChapterPatch, updatedAt time.Time) (*models.Chapter, error)
	DeleteChapterInStory(ctx context.Context, id, storyID string) error
	ListChaptersByStory(ctx context.Context, storyID string) ([]models.Chapter, error)
	ListChaptersByStoryAndAct(ctx context.Context, storyID, actID string) ([]models.Chapter, error)

	// 场景
	CreateScene(ctx context.Context, scene *models.Scene) error
	GetSceneInStory(ctx context.Context, id, storyID string) (*models.Scene, error)
	UpdateSceneInStory(ctx context.Context, id, storyID string, patch models.ScenePatch, updatedAt time.Time) (*models.Scene, error)
	DeleteSceneInStory(ctx context.Context, id, storyID string) error
	ListScenesByStory(ctx context.Context, storyID string) ([]models.Scene, error)
	ListScenesByStoryAndChapter(ctx context.Context, storyID, chapterID string) ([]models.Scene, error)

	Close() error
}

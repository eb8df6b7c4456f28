// internal/services/service_test.go
package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Corphon/StoryPlannerMCP/internal/auth"
	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
)

// 测试环境：两个用户各自带身份的上下文，共享同一个存储
type testEnv struct {
	Store    storage.Store
	Stories  *StoryService
	Acts     *ActService
	Chapters *ChapterService
	Scenes   *SceneService
	Exports  *ExportService

	User1 context.Context
	User2 context.Context
	Anon  context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "planner.db")
	store, err := storage.Open(path)
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	ownership := NewOwnershipService(store)
	return &testEnv{
		Store:    store,
		Stories:  NewStoryService(store, ownership),
		Acts:     NewActService(store, ownership),
		Chapters: NewChapterService(store, ownership),
		Scenes:   NewSceneService(store, ownership),
		Exports:  NewExportService(store, ownership),
		User1:    auth.WithUserID(context.Background(), "user_1"),
		User2:    auth.WithUserID(context.Background(), "user_2"),
		Anon:     context.Background(),
	}
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

// ----------------------------------------
// 故事

func TestCreateStoryRequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Stories.CreateStory(env.Anon, &CreateStoryInput{Title: "无主故事"})
	if !apperrors.IsUnauthorizedError(err) {
		t.Fatalf("匿名创建应该返回未授权错误, 得到: %v", err)
	}
}

func TestCreateStoryRequiresTitle(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "   "})
	if !apperrors.IsValidationError(err) {
		t.Fatalf("空标题应该返回校验错误, 得到: %v", err)
	}
}

func TestCreateStorySetsOwnerAndTimestamps(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{
		Title:  "长夜",
		Genre:  "奇幻",
		Status: "PLANNING",
	})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	if story.UserID != "user_1" {
		t.Fatalf("所有者应该取自调用者身份, 得到: %q", story.UserID)
	}
	if !strings.HasPrefix(story.ID, "story_") {
		t.Fatalf("故事ID前缀不正确: %q", story.ID)
	}
	if story.CreatedAt.IsZero() || story.UpdatedAt.IsZero() {
		t.Fatal("时间戳应该在创建时写入")
	}
}

func TestUpdateStoryRejectsNoOp(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	_, err = env.Stories.UpdateStory(env.User1, &UpdateStoryInput{ID: story.ID})
	if !apperrors.IsValidationError(err) {
		t.Fatalf("零字段更新应该返回校验错误, 得到: %v", err)
	}
}

func TestUpdateStorySingleField(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{
		Title: "长夜",
		Genre: "奇幻",
	})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	updated, err := env.Stories.UpdateStory(env.User1, &UpdateStoryInput{
		ID:     story.ID,
		Status: strPtr("DRAFTING"),
	})
	if err != nil {
		t.Fatalf("更新故事失败: %v", err)
	}
	if updated.Status != "DRAFTING" {
		t.Fatalf("status 应该被更新: %q", updated.Status)
	}
	if updated.Title != "长夜" || updated.Genre != "奇幻" {
		t.Fatalf("未指定的字段不应该改变: %+v", updated)
	}
}

func TestUpdateStoryOfOtherUserIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	// 他人的故事与不存在的故事不可区分
	_, err = env.Stories.UpdateStory(env.User2, &UpdateStoryInput{
		ID:    story.ID,
		Title: strPtr("占为己有"),
	})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("跨用户更新应该返回不存在错误, 得到: %v", err)
	}
}

func TestListStoriesScopedToCaller(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"甲", "乙"} {
		if _, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: title}); err != nil {
			t.Fatalf("创建故事失败: %v", err)
		}
	}
	if _, err := env.Stories.CreateStory(env.User2, &CreateStoryInput{Title: "丙"}); err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	result, err := env.Stories.ListStories(env.User1)
	if err != nil {
		t.Fatalf("查询故事列表失败: %v", err)
	}
	if result.Total != 2 || len(result.Items) != 2 {
		t.Fatalf("期望 2 个故事, 得到 total=%d items=%d", result.Total, len(result.Items))
	}
	for _, story := range result.Items {
		if story.UserID != "user_1" {
			t.Fatalf("出现了其他用户的故事: %+v", story)
		}
	}
}

// ----------------------------------------
// 幕

func TestCreateActDefaultsOrderIndex(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	act, err := env.Acts.CreateAct(env.User1, &CreateActInput{
		StoryID: story.ID,
		Title:   "第一幕",
	})
	if err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}
	if act.OrderIndex != 1 {
		t.Fatalf("order_index 缺省应该为 1, 得到: %d", act.OrderIndex)
	}
	if !strings.HasPrefix(act.ID, "act_") {
		t.Fatalf("幕ID前缀不正确: %q", act.ID)
	}
}

func TestActOwnershipScenario(t *testing.T) {
	env := newTestEnv(t)

	// U1 创建故事和幕；U2 用同样的 id 组合更新必须失败
	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "Novel A"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	act, err := env.Acts.CreateAct(env.User1, &CreateActInput{
		StoryID:    story.ID,
		OrderIndex: intPtr(1),
	})
	if err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}
	if act.OrderIndex != 1 {
		t.Fatalf("order_index 不匹配: %d", act.OrderIndex)
	}

	_, err = env.Acts.UpdateAct(env.User2, &UpdateActInput{
		ID:      act.ID,
		StoryID: story.ID,
		Title:   strPtr("篡改"),
	})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("他人更新幕应该返回不存在错误, 得到: %v", err)
	}

	// 所有者本人可以更新
	updated, err := env.Acts.UpdateAct(env.User1, &UpdateActInput{
		ID:      act.ID,
		StoryID: story.ID,
		Title:   strPtr("第一幕"),
	})
	if err != nil {
		t.Fatalf("更新幕失败: %v", err)
	}
	if updated.Title != "第一幕" {
		t.Fatalf("title 应该被更新: %q", updated.Title)
	}
}

func TestDeleteActThenListShrinks(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	act, err := env.Acts.CreateAct(env.User1, &CreateActInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}

	if err := env.Acts.DeleteAct(env.User1, &DeleteActInput{ID: act.ID, StoryID: story.ID}); err != nil {
		t.Fatalf("删除幕失败: %v", err)
	}

	result, err := env.Acts.ListActs(env.User1, &ListActsInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("查询幕列表失败: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("删除后列表应该为空, 得到 total=%d", result.Total)
	}

	// 重复删除按不存在处理
	err = env.Acts.DeleteAct(env.User1, &DeleteActInput{ID: act.ID, StoryID: story.ID})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("重复删除应该返回不存在错误, 得到: %v", err)
	}
}

// ----------------------------------------
// 章节

func TestCreateChapterWithForeignActFails(t *testing.T) {
	env := newTestEnv(t)

	storyA, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "甲"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	storyB, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "乙"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	actB, err := env.Acts.CreateAct(env.User1, &CreateActInput{StoryID: storyB.ID})
	if err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}

	// actB 属于另一个故事，即使同属一个用户也不能挂接
	_, err = env.Chapters.CreateChapter(env.User1, &CreateChapterInput{
		StoryID: storyA.ID,
		ActID:   &actB.ID,
	})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("跨故事挂接应该返回不存在错误, 得到: %v", err)
	}
}

func TestChapterDefaultsToUnassigned(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	chapter, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{
		StoryID: story.ID,
		Title:   "序章",
	})
	if err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}
	if chapter.ActID != nil {
		t.Fatalf("未指定幕时 act_id 应该为空, 得到: %v", *chapter.ActID)
	}
	if chapter.OrderIndex != 1 {
		t.Fatalf("order_index 缺省应该为 1, 得到: %d", chapter.OrderIndex)
	}
}

func TestUpdateChapterReassignsAct(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	act, err := env.Acts.CreateAct(env.User1, &CreateActInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}
	chapter, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{
		StoryID: story.ID,
		Title:   "序章",
	})
	if err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}

	updated, err := env.Chapters.UpdateChapter(env.User1, &UpdateChapterInput{
		ID:      chapter.ID,
		StoryID: story.ID,
		ActID:   &act.ID,
	})
	if err != nil {
		t.Fatalf("更新章节失败: %v", err)
	}
	if updated.ActID == nil || *updated.ActID != act.ID {
		t.Fatalf("act_id 应该被更新: %+v", updated.ActID)
	}
	if updated.Title != "序章" {
		t.Fatalf("未指定的字段不应该改变: %q", updated.Title)
	}
}

func TestListChaptersNarrowedByActIsSubset(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	act, err := env.Acts.CreateAct(env.User1, &CreateActInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}
	if _, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{
		StoryID: story.ID,
		ActID:   &act.ID,
		Title:   "第一章",
	}); err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}
	if _, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{
		StoryID: story.ID,
		Title:   "游离章节",
	}); err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}

	all, err := env.Chapters.ListChapters(env.User1, &ListChaptersInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("查询章节列表失败: %v", err)
	}
	narrowed, err := env.Chapters.ListChapters(env.User1, &ListChaptersInput{
		StoryID: story.ID,
		ActID:   &act.ID,
	})
	if err != nil {
		t.Fatalf("按幕查询章节失败: %v", err)
	}

	if all.Total != 2 || narrowed.Total != 1 {
		t.Fatalf("收窄结果应该是全集的子集, 得到 all=%d narrowed=%d", all.Total, narrowed.Total)
	}
	if narrowed.Items[0].ActID == nil || *narrowed.Items[0].ActID != act.ID {
		t.Fatalf("收窄结果中出现未挂接章节: %+v", narrowed.Items[0])
	}
}

// ----------------------------------------
// 场景

func TestUpdateSceneWithChapterFromOtherStoryFails(t *testing.T) {
	env := newTestEnv(t)

	storyA, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "甲"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	storyB, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "乙"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	chapterB, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{StoryID: storyB.ID})
	if err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}
	scene, err := env.Scenes.CreateScene(env.User1, &CreateSceneInput{StoryID: storyA.ID})
	if err != nil {
		t.Fatalf("创建场景失败: %v", err)
	}

	// chapterB 实际存在，但属于另一个故事
	_, err = env.Scenes.UpdateScene(env.User1, &UpdateSceneInput{
		ID:        scene.ID,
		StoryID:   storyA.ID,
		ChapterID: &chapterB.ID,
	})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("跨故事挂接应该返回不存在错误, 得到: %v", err)
	}
}

func TestSceneForgedAncestorByOtherUser(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	chapter, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}

	// U2 伪造他人的 story_id 和 chapter_id 创建场景
	_, err = env.Scenes.CreateScene(env.User2, &CreateSceneInput{
		StoryID:   story.ID,
		ChapterID: &chapter.ID,
	})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("伪造上级引用应该返回不存在错误, 得到: %v", err)
	}
}

func TestScenePartialUpdateAndNarrowedList(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	chapter, err := env.Chapters.CreateChapter(env.User1, &CreateChapterInput{StoryID: story.ID})
	if err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}
	scene, err := env.Scenes.CreateScene(env.User1, &CreateSceneInput{
		StoryID: story.ID,
		Setting: "码头",
		Goal:    "登船",
	})
	if err != nil {
		t.Fatalf("创建场景失败: %v", err)
	}
	if scene.ChapterID != nil || scene.OrderIndex != 1 {
		t.Fatalf("缺省值不正确: %+v", scene)
	}

	// 零字段更新被拒绝
	_, err = env.Scenes.UpdateScene(env.User1, &UpdateSceneInput{ID: scene.ID, StoryID: story.ID})
	if !apperrors.IsValidationError(err) {
		t.Fatalf("零字段更新应该返回校验错误, 得到: %v", err)
	}

	// 单字段更新挂接到章节
	updated, err := env.Scenes.UpdateScene(env.User1, &UpdateSceneInput{
		ID:        scene.ID,
		StoryID:   story.ID,
		ChapterID: &chapter.ID,
	})
	if err != nil {
		t.Fatalf("更新场景失败: %v", err)
	}
	if updated.Setting != "码头" || updated.Goal != "登船" {
		t.Fatalf("未指定的字段不应该改变: %+v", updated)
	}
	if updated.ChapterID == nil || *updated.ChapterID != chapter.ID {
		t.Fatalf("chapter_id 应该被更新: %+v", updated.ChapterID)
	}

	narrowed, err := env.Scenes.ListScenes(env.User1, &ListScenesInput{
		StoryID:   story.ID,
		ChapterID: &chapter.ID,
	})
	if err != nil {
		t.Fatalf("按章节查询场景失败: %v", err)
	}
	if narrowed.Total != 1 || narrowed.Items[0].ID != scene.ID {
		t.Fatalf("收窄结果不正确: %+v", narrowed)
	}
}

func TestListScenesOfOtherUserStoryIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	story, err := env.Stories.CreateStory(env.User1, &CreateStoryInput{Title: "长夜"})
	if err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}

	_, err = env.Scenes.ListScenes(env.User2, &ListScenesInput{StoryID: story.ID})
	if !apperrors.IsNotFoundError(err) {
		t.Fatalf("读取他人故事的场景应该返回不存在错误, 得到: %v", err)
	}
}

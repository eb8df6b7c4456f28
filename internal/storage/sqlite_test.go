// internal/storage/sqlite_test.go
package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "planner.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func seedStory(t *testing.T, store *SQLiteStore, id, userID string) *models.Story {
	t.Helper()

	now := time.Now()
	story := &models.Story{
		ID:        id,
		UserID:    userID,
		Title:     "测试故事",
		Status:    string(models.StatusPlanning),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateStory(context.Background(), story); err != nil {
		t.Fatalf("创建故事失败: %v", err)
	}
	return story
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("空路径应该返回错误")
	}
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	user := &models.User{
		ID:          "user_1",
		Username:    "作者甲",
		Email:       "a@example.com",
		CreatedAt:   now,
		LastLogin:   now,
		LastUpdated: now,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	got, err := store.GetUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("读取用户失败: %v", err)
	}
	if got.Username != "作者甲" || got.Email != "a@example.com" {
		t.Fatalf("用户字段不匹配: %+v", got)
	}

	later := now.Add(time.Hour)
	if err := store.TouchUserLogin(ctx, "user_1", later); err != nil {
		t.Fatalf("更新登录时间失败: %v", err)
	}
	got, err = store.GetUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("读取用户失败: %v", err)
	}
	if !got.LastLogin.After(got.CreatedAt) {
		t.Fatalf("登录时间应该被更新: %v", got.LastLogin)
	}

	if _, err := store.GetUser(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound, 得到: %v", err)
	}
	if err := store.TouchUserLogin(ctx, "user_missing", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound, 得到: %v", err)
	}
}

func TestStoryPartialUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedStory(t, store, "story_1", "user_1")

	newLogline := "一句话梗概"
	updated, err := store.UpdateStory(ctx, "story_1", models.StoryPatch{Logline: &newLogline}, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("更新故事失败: %v", err)
	}

	if updated.Logline != "一句话梗概" {
		t.Fatalf("logline 应该被更新: %q", updated.Logline)
	}
	if updated.Title != "测试故事" {
		t.Fatalf("未指定的字段不应该改变: %q", updated.Title)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatal("updated_at 应该被刷新")
	}

	if _, err := store.UpdateStory(ctx, "story_missing", models.StoryPatch{Logline: &newLogline}, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound, 得到: %v", err)
	}
}

func TestListStoriesByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedStory(t, store, "story_1", "user_1")
	seedStory(t, store, "story_2", "user_1")
	seedStory(t, store, "story_3", "user_2")

	stories, err := store.ListStoriesByUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("查询故事列表失败: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("期望 2 个故事, 得到 %d", len(stories))
	}
	for _, story := range stories {
		if story.UserID != "user_1" {
			t.Fatalf("出现了其他用户的故事: %+v", story)
		}
	}
}

func TestActScopedByStory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedStory(t, store, "story_1", "user_1")
	seedStory(t, store, "story_2", "user_2")

	act := &models.Act{
		ID:         "act_1",
		StoryID:    "story_1",
		OrderIndex: 1,
		Title:      "第一幕",
		CreatedAt:  time.Now(),
	}
	if err := store.CreateAct(ctx, act); err != nil {
		t.Fatalf("创建幕失败: %v", err)
	}

	// 用别的故事ID定位不到同一行
	if _, err := store.GetActInStory(ctx, "act_1", "story_2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("跨故事读取应该返回 ErrNotFound, 得到: %v", err)
	}
	if err := store.DeleteActInStory(ctx, "act_1", "story_2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("跨故事删除应该返回 ErrNotFound, 得到: %v", err)
	}

	newTitle := "开端"
	updated, err := store.UpdateActInStory(ctx, "act_1", "story_1", models.ActPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("更新幕失败: %v", err)
	}
	if updated.Title != "开端" || updated.OrderIndex != 1 {
		t.Fatalf("幕字段不匹配: %+v", updated)
	}

	if err := store.DeleteActInStory(ctx, "act_1", "story_1"); err != nil {
		t.Fatalf("删除幕失败: %v", err)
	}
	if _, err := store.GetActInStory(ctx, "act_1", "story_1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("删除后读取应该返回 ErrNotFound, 得到: %v", err)
	}
}

func TestChapterNullableActReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedStory(t, store, "story_1", "user_1")

	now := time.Now()
	free := &models.Chapter{
		ID:        "chapter_1",
		StoryID:   "story_1",
		Title:     "游离章节",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateChapter(ctx, free); err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}

	actID := "act_1"
	bound := &models.Chapter{
		ID:        "chapter_2",
		StoryID:   "story_1",
		ActID:     &actID,
		Title:     "挂接章节",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateChapter(ctx, bound); err != nil {
		t.Fatalf("创建章节失败: %v", err)
	}

	got, err := store.GetChapterInStory(ctx, "chapter_1", "story_1")
	if err != nil {
		t.Fatalf("读取章节失败: %v", err)
	}
	if got.ActID != nil {
		t.Fatalf("未挂接章节的 act_id 应该为 nil, 得到: %v", *got.ActID)
	}

	got, err = store.GetChapterInStory(ctx, "chapter_2", "story_1")
	if err != nil {
		t.Fatalf("读取章节失败: %v", err)
	}
	if got.ActID == nil || *got.ActID != "act_1" {
		t.Fatalf("挂接章节的 act_id 不匹配: %+v", got.ActID)
	}

	narrowed, err := store.ListChaptersByStoryAndAct(ctx, "story_1", "act_1")
	if err != nil {
		t.Fatalf("按幕查询章节失败: %v", err)
	}
	if len(narrowed) != 1 || narrowed[0].ID != "chapter_2" {
		t.Fatalf("按幕收窄结果不正确: %+v", narrowed)
	}

	all, err := store.ListChaptersByStory(ctx, "story_1")
	if err != nil {
		t.Fatalf("查询章节列表失败: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("期望 2 个章节, 得到 %d", len(all))
	}
}

func TestScenePatchClearsNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedStory(t, store, "story_1", "user_1")

	now := time.Now()
	scene := &models.Scene{
		ID:         "scene_1",
		StoryID:    "story_1",
		OrderIndex: 2,
		Setting:    "码头",
		Goal:       "登船",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.CreateScene(ctx, scene); err != nil {
		t.Fatalf("创建场景失败: %v", err)
	}

	outcome := "错过了船"
	updated, err := store.UpdateSceneInStory(ctx, "scene_1", "story_1", models.ScenePatch{Outcome: &outcome}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("更新场景失败: %v", err)
	}
	if updated.Setting != "码头" || updated.Goal != "登船" || updated.OrderIndex != 2 {
		t.Fatalf("未指定的字段不应该改变: %+v", updated)
	}
	if updated.Outcome != "错过了船" {
		t.Fatalf("outcome 应该被更新: %q", updated.Outcome)
	}

	chapterID := "chapter_1"
	updated, err = store.UpdateSceneInStory(ctx, "scene_1", "story_1", models.ScenePatch{ChapterID: &chapterID}, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("更新场景失败: %v", err)
	}
	if updated.ChapterID == nil || *updated.ChapterID != "chapter_1" {
		t.Fatalf("chapter_id 应该被更新: %+v", updated.ChapterID)
	}

	narrowed, err := store.ListScenesByStoryAndChapter(ctx, "story_1", "chapter_1")
	if err != nil {
		t.Fatalf("按章节查询场景失败: %v", err)
	}
	if len(narrowed) != 1 {
		t.Fatalf("期望 1 个场景, 得到 %d", len(narrowed))
	}
}

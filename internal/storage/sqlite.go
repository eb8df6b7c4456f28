// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/models"
	_ "modernc.org/sqlite"
)

// schema 定义全部表结构
// 引用完整性在应用层维护（所有权链每次请求都从根重新校验），不依赖外键
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT,
    created_at INTEGER NOT NULL,
    last_login INTEGER NOT NULL,
    last_updated INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stories (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    logline TEXT NOT NULL DEFAULT '',
    genre TEXT NOT NULL DEFAULT '',
    target_audience TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stories_user ON stories(user_id);

CREATE TABLE IF NOT EXISTS acts (
    id TEXT PRIMARY KEY,
    story_id TEXT NOT NULL,
    order_index INTEGER NOT NULL DEFAULT 1,
    title TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_acts_story ON acts(story_id);

CREATE TABLE IF NOT EXISTS chapters (
    id TEXT PRIMARY KEY,
    story_id TEXT NOT NULL,
    act_id TEXT,
    order_index INTEGER NOT NULL DEFAULT 1,
    title TEXT NOT NULL DEFAULT '',
    pov_character TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chapters_story ON chapters(story_id);
CREATE INDEX IF NOT EXISTS idx_chapters_act ON chapters(act_id);

CREATE TABLE IF NOT EXISTS scenes (
    id TEXT PRIMARY KEY,
    story_id TEXT NOT NULL,
    chapter_id TEXT,
    order_index INTEGER NOT NULL DEFAULT 1,
    setting TEXT NOT NULL DEFAULT '',
    goal TEXT NOT NULL DEFAULT '',
    conflict TEXT NOT NULL DEFAULT '',
    outcome TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scenes_story ON scenes(story_id);
CREATE INDEX IF NOT EXISTS idx_scenes_chapter ON scenes(chapter_id);
`

// SQLiteStore 基于 SQLite 的持久化实现
type SQLiteStore struct {
	db *sql.DB
}

// Open 打开（必要时初始化）SQLite 数据库
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("数据库路径不能为空")
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close 释放数据库连接
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// toMillis 时间统一以毫秒精度的UTC时间戳入库
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis 恢复毫秒精度时间戳
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// 用户相关方法
// ----------------------------------------

// CreateUser 插入用户记录
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, created_at, last_login, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email,
		toMillis(user.CreatedAt), toMillis(user.LastLogin), toMillis(user.LastUpdated))
	if err != nil {
		return fmt.Errorf("写入用户失败: %w", err)
	}
	return nil
}

// GetUser 按ID读取用户
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, created_at, last_login, last_updated FROM users WHERE id = ?`, id)

	var user models.User
	var createdAt, lastLogin, lastUpdated int64
	err := row.Scan(&user.ID, &user.Username, &user.Email, &createdAt, &lastLogin, &lastUpdated)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取用户失败: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	user.LastLogin = fromMillis(lastLogin)
	user.LastUpdated = fromMillis(lastUpdated)
	return &user, nil
}

// TouchUserLogin 刷新用户的最近登录时间
func (s *SQLiteStore) TouchUserLogin(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ?, last_updated = ? WHERE id = ?`,
		toMillis(at), toMillis(at), id)
	if err != nil {
		return fmt.Errorf("更新登录时间失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新登录时间失败: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// 故事相关方法
// ----------------------------------------

// CreateStory 插入故事记录
func (s *SQLiteStore) CreateStory(ctx context.Context, story *models.Story) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stories (id, user_id, title, logline, genre, target_audience, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ID, story.UserID, story.Title, story.Logline, story.Genre,
		story.TargetAudience, story.Status, story.Notes,
		toMillis(story.CreatedAt), toMillis(story.UpdatedAt))
	if err != nil {
		return fmt.Errorf("写入故事失败: %w", err)
	}
	return nil
}

// GetStory 按ID读取故事
func (s *SQLiteStore) GetStory(ctx context.Context, id string) (*models.Story, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, logline, genre, target_audience, status, notes, created_at, updated_at
		 FROM stories WHERE id = ?`, id)
	return scanStory(row)
}

// UpdateStory 按补丁进行部分字段更新，并刷新 updated_at，返回更新后的行
// nil 字段不出现在 SET 子句中，保持原值
func (s *SQLiteStore) UpdateStory(ctx context.Context, id string, patch models.StoryPatch, updatedAt time.Time) (*models.Story, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{toMillis(updatedAt)}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Logline != nil {
		sets = append(sets, "logline = ?")
		args = append(args, *patch.Logline)
	}
	if patch.Genre != nil {
		sets = append(sets, "genre = ?")
		args = append(args, *patch.Genre)
	}
	if patch.TargetAudience != nil {
		sets = append(sets, "target_audience = ?")
		args = append(args, *patch.TargetAudience)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE stories SET %s WHERE id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("更新故事失败: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("更新故事失败: %w", err)
	} else if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetStory(ctx, id)
}

// ListStoriesByUser 列出某用户的全部故事
func (s *SQLiteStore) ListStoriesByUser(ctx context.Context, userID string) ([]models.Story, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, logline, genre, target_audience, status, notes, created_at, updated_at
		 FROM stories WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("查询故事列表失败: %w", err)
	}
	defer rows.Close()

	stories := []models.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, *story)
	}
	return stories, rows.Err()
}

// 幕相关方法
// ----------------------------------------

// CreateAct 插入幕记录
func (s *SQLiteStore) CreateAct(ctx context.Context, act *models.Act) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO acts (id, story_id, order_index, title, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		act.ID, act.StoryID, act.OrderIndex, act.Title, act.Summary, toMillis(act.CreatedAt))
	if err != nil {
		return fmt.Errorf("写入幕失败: %w", err)
	}
	return nil
}

// GetActInStory 在指定故事内按ID读取幕
func (s *SQLiteStore) GetActInStory(ctx context.Context, id, storyID string) (*models.Act, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, story_id, order_index, title, summary, created_at
		 FROM acts WHERE id = ? AND story_id = ?`, id, storyID)
	return scanAct(row)
}

// UpdateActInStory 部分更新幕；幕不维护 updated_at
func (s *SQLiteStore) UpdateActInStory(ctx context.Context, id, storyID string, patch models.ActPatch) (*models.Act, error) {
	sets := []string{}
	args := []interface{}{}

	if patch.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *patch.OrderIndex)
	}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("没有待更新的字段")
	}
	args = append(args, id, storyID)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE acts SET %s WHERE id = ? AND story_id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("更新幕失败: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("更新幕失败: %w", err)
	} else if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetActInStory(ctx, id, storyID)
}

// DeleteActInStory 在指定故事内删除幕
func (s *SQLiteStore) DeleteActInStory(ctx context.Context, id, storyID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM acts WHERE id = ? AND story_id = ?`, id, storyID)
	if err != nil {
		return fmt.Errorf("删除幕失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("删除幕失败: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActsByStory 列出某故事的全部幕
func (s *SQLiteStore) ListActsByStory(ctx context.Context, storyID string) ([]models.Act, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_id, order_index, title, summary, created_at
		 FROM acts WHERE story_id = ?`, storyID)
	if err != nil {
		return nil, fmt.Errorf("查询幕列表失败: %w", err)
	}
	defer rows.Close()

	acts := []models.Act{}
	for rows.Next() {
		act, err := scanAct(rows)
		if err != nil {
			return nil, err
		}
		acts = append(acts, *act)
	}
	return acts, rows.Err()
}

// 章节相关方法
// ----------------------------------------

// CreateChapter 插入章节记录
func (s *SQLiteStore) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (id, story_id, act_id, order_index, title, pov_character, summary, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chapter.ID, chapter.StoryID, nullableString(chapter.ActID), chapter.OrderIndex,
		chapter.Title, chapter.POVCharacter, chapter.Summary,
		toMillis(chapter.CreatedAt), toMillis(chapter.UpdatedAt))
	if err != nil {
		return fmt.Errorf("写入章节失败: %w", err)
	}
	return nil
}

// GetChapterInStory 在指定故事内按ID读取章节
func (s *SQLiteStore) GetChapterInStory(ctx context.Context, id, storyID string) (*models.Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, story_id, act_id, order_index, title, pov_character, summary, created_at, updated_at
		 FROM chapters WHERE id = ? AND story_id = ?`, id, storyID)
	return scanChapter(row)
}

// UpdateChapterInStory 部分更新章节并刷新 updated_at，返回更新后的行
func (s *SQLiteStore) UpdateChapterInStory(ctx context.Context, id, storyID string, patch models.ChapterPatch, updatedAt time.Time) (*models.Chapter, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{toMillis(updatedAt)}

	if patch.ActID != nil {
		sets = append(sets, "act_id = ?")
		args = append(args, *patch.ActID)
	}
	if patch.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *patch.OrderIndex)
	}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.POVCharacter != nil {
		sets = append(sets, "pov_character = ?")
		args = append(args, *patch.POVCharacter)
	}
	if patch.Summary != nil {
		sets = append(sets, "summary = ?")
		args = append(args, *patch.Summary)
	}
	args = append(args, id, storyID)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE chapters SET %s WHERE id = ? AND story_id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("更新章节失败: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("更新章节失败: %w", err)
	} else if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetChapterInStory(ctx, id, storyID)
}

// DeleteChapterInStory 在指定故事内删除章节
func (s *SQLiteStore) DeleteChapterInStory(ctx context.Context, id, storyID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM chapters WHERE id = ? AND story_id = ?`, id, storyID)
	if err != nil {
		return fmt.Errorf("删除章节失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("删除章节失败: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListChaptersByStory 列出某故事的全部章节
func (s *SQLiteStore) ListChaptersByStory(ctx context.Context, storyID string) ([]models.Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_id, act_id, order_index, title, pov_character, summary, created_at, updated_at
		 FROM chapters WHERE story_id = ?`, storyID)
	if err != nil {
		return nil, fmt.Errorf("查询章节列表失败: %w", err)
	}
	defer rows.Close()
	return collectChapters(rows)
}

// ListChaptersByStoryAndAct 列出某故事内挂在指定幕下的章节
func (s *SQLiteStore) ListChaptersByStoryAndAct(ctx context.Context, storyID, actID string) ([]models.Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_id, act_id, order_index, title, pov_character, summary, created_at, updated_at
		 FROM chapters WHERE story_id = ? AND act_id = ?`, storyID, actID)
	if err != nil {
		return nil, fmt.Errorf("查询章节列表失败: %w", err)
	}
	defer rows.Close()
	return collectChapters(rows)
}

// 场景相关方法
// ----------------------------------------

// CreateScene 插入场景记录
func (s *SQLiteStore) CreateScene(ctx context.Context, scene *models.Scene) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenes (id, story_id, chapter_id, order_index, setting, goal, conflict, outcome, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		scene.ID, scene.StoryID, nullableString(scene.ChapterID), scene.OrderIndex,
		scene.Setting, scene.Goal, scene.Conflict, scene.Outcome, scene.Content,
		toMillis(scene.CreatedAt), toMillis(scene.UpdatedAt))
	if err != nil {
		return fmt.Errorf("写入场景失败: %w", err)
	}
	return nil
}

// GetSceneInStory 在指定故事内按ID读取场景
func (s *SQLiteStore) GetSceneInStory(ctx context.Context, id, storyID string) (*models.Scene, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, story_id, chapter_id, order_index, setting, goal, conflict, outcome, content, created_at, updated_at
		 FROM scenes WHERE id = ? AND story_id = ?`, id, storyID)
	return scanScene(row)
}

// UpdateSceneInStory 部分更新场景并刷新 updated_at，返回更新后的行
func (s *SQLiteStore) UpdateSceneInStory(ctx context.Context, id, storyID string, patch models.ScenePatch, updatedAt time.Time) (*models.Scene, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{toMillis(updatedAt)}

	if patch.ChapterID != nil {
		sets = append(sets, "chapter_id = ?")
		args = append(args, *patch.ChapterID)
	}
	if patch.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *patch.OrderIndex)
	}
	if patch.Setting != nil {
		sets = append(sets, "setting = ?")
		args = append(args, *patch.Setting)
	}
	if patch.Goal != nil {
		sets = append(sets, "goal = ?")
		args = append(args, *patch.Goal)
	}
	if patch.Conflict != nil {
		sets = append(sets, "conflict = ?")
		args = append(args, *patch.Conflict)
	}
	if patch.Outcome != nil {
		sets = append(sets, "outcome = ?")
		args = append(args, *patch.Outcome)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	args = append(args, id, storyID)

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE scenes SET %s WHERE id = ? AND story_id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, fmt.Errorf("更新场景失败: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("更新场景失败: %w", err)
	} else if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetSceneInStory(ctx, id, storyID)
}

// DeleteSceneInStory 在指定故事内删除场景
func (s *SQLiteStore) DeleteSceneInStory(ctx context.Context, id, storyID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM scenes WHERE id = ? AND story_id = ?`, id, storyID)
	if err != nil {
		return fmt.Errorf("删除场景失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("删除场景失败: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListScenesByStory 列出某故事的全部场景
func (s *SQLiteStore) ListScenesByStory(ctx context.Context, storyID string) ([]models.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_id, chapter_id, order_index, setting, goal, conflict, outcome, content, created_at, updated_at
		 FROM scenes WHERE story_id = ?`, storyID)
	if err != nil {
		return nil, fmt.Errorf("查询场景列表失败: %w", err)
	}
	defer rows.Close()
	return collectScenes(rows)
}

// ListScenesByStoryAndChapter 列出某故事内挂在指定章节下的场景
func (s *SQLiteStore) ListScenesByStoryAndChapter(ctx context.Context, storyID, chapterID string) ([]models.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, story_id, chapter_id, order_index, setting, goal, conflict, outcome, content, created_at, updated_at
		 FROM scenes WHERE story_id = ? AND chapter_id = ?`, storyID, chapterID)
	if err != nil {
		return nil, fmt.Errorf("查询场景列表失败: %w", err)
	}
	defer rows.Close()
	return collectScenes(rows)
}

// 行扫描辅助
// ----------------------------------------

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStory(row rowScanner) (*models.Story, error) {
	var story models.Story
	var createdAt, updatedAt int64
	err := row.Scan(&story.ID, &story.UserID, &story.Title, &story.Logline, &story.Genre,
		&story.TargetAudience, &story.Status, &story.Notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取故事失败: %w", err)
	}
	story.CreatedAt = fromMillis(createdAt)
	story.UpdatedAt = fromMillis(updatedAt)
	return &story, nil
}

func scanAct(row rowScanner) (*models.Act, error) {
	var act models.Act
	var createdAt int64
	err := row.Scan(&act.ID, &act.StoryID, &act.OrderIndex, &act.Title, &act.Summary, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取幕失败: %w", err)
	}
	act.CreatedAt = fromMillis(createdAt)
	return &act, nil
}

func scanChapter(row rowScanner) (*models.Chapter, error) {
	var chapter models.Chapter
	var actID sql.NullString
	var createdAt, updatedAt int64
	err := row.Scan(&chapter.ID, &chapter.StoryID, &actID, &chapter.OrderIndex,
		&chapter.Title, &chapter.POVCharacter, &chapter.Summary, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取章节失败: %w", err)
	}
	if actID.Valid {
		chapter.ActID = &actID.String
	}
	chapter.CreatedAt = fromMillis(createdAt)
	chapter.UpdatedAt = fromMillis(updatedAt)
	return &chapter, nil
}

func scanScene(row rowScanner) (*models.Scene, error) {
	var scene models.Scene
	var chapterID sql.NullString
	var createdAt, updatedAt int64
	err := row.Scan(&scene.ID, &scene.StoryID, &chapterID, &scene.OrderIndex,
		&scene.Setting, &scene.Goal, &scene.Conflict, &scene.Outcome, &scene.Content,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("读取场景失败: %w", err)
	}
	if chapterID.Valid {
		scene.ChapterID = &chapterID.String
	}
	scene.CreatedAt = fromMillis(createdAt)
	scene.UpdatedAt = fromMillis(updatedAt)
	return &scene, nil
}

func collectChapters(rows *sql.Rows) ([]models.Chapter, error) {
	chapters := []models.Chapter{}
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, *chapter)
	}
	return chapters, rows.Err()
}

func collectScenes(rows *sql.Rows) ([]models.Scene, error) {
	scenes := []models.Scene{}
	for rows.Next() {
		scene, err := scanScene(rows)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, *scene)
	}
	return scenes, rows.Err()
}

// nullableString 把可选引用转换为可空列值
func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// internal/models/export.go
package models

import "time"

// StoryOutline 导出用的完整层级视图：幕 → 章节 → 场景
// 未挂接到幕的章节、未挂接到章节的场景单独列出，不会丢失
type StoryOutline struct {
	Story              Story          `json:"story"`
	Acts               []OutlineAct   `json:"acts"`
	UnassignedChapters []OutlineChapter `json:"unassigned_chapters,omitempty"`
	UnassignedScenes   []Scene        `json:"unassigned_scenes,omitempty"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// OutlineAct 幕及其下属章节
type OutlineAct struct {
	Act      Act              `json:"act"`
	Chapters []OutlineChapter `json:"chapters"`
}

// OutlineChapter 章节及其下属场景
type OutlineChapter struct {
	Chapter Chapter `json:"chapter"`
	Scenes  []Scene `json:"scenes"`
}

// ExportResult 导出结果
type ExportResult struct {
	StoryID     string    `json:"story_id"`
	Title       string    `json:"title"`
	Format      string    `json:"format"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}

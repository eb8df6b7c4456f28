// internal/models/scene.go
package models

import (
	"time"
)

// Scene 表示故事内的叶级内容单元，可选地挂在某一章节之下
// ChapterID 为 nil 时表示场景直接属于故事；非 nil 时必须指向同一故事内的章节
type Scene struct {
	ID         string    `json:"id"`
	StoryID    string    `json:"story_id"`
	ChapterID  *string   `json:"chapter_id,omitempty"`
	OrderIndex int       `json:"order_index"`
	Setting    string    `json:"setting,omitempty"`  // 场景地点与时间
	Goal       string    `json:"goal,omitempty"`     // 视角角色的目标
	Conflict   string    `json:"conflict,omitempty"` // 阻碍与冲突
	Outcome    string    `json:"outcome,omitempty"`  // 结局走向
	Content    string    `json:"content,omitempty"`  // 正文草稿
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScenePatch 表示对场景的部分字段更新
type ScenePatch struct {
	ChapterID  *string
	OrderIndex *int
	Setting    *string
	Goal       *string
	Conflict   *string
	Outcome    *string
	Content    *string
}

// IsEmpty 检查补丁是否不包含任何待更新字段
func (p *ScenePatch) IsEmpty() bool {
	return p.ChapterID == nil && p.OrderIndex == nil && p.Setting == nil &&
		p.Goal == nil && p.Conflict == nil && p.Outcome == nil && p.Content == nil
}

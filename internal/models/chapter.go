// internal/models/chapter.go
package models

import (
	"time"
)

// Chapter 表示故事内的章节，可选地挂在某一幕之下
// ActID 为 nil 时表示章节不属于任何幕；非 nil 时必须指向同一故事内的幕
type Chapter struct {
	ID           string    `json:"id"`
	StoryID      string    `json:"story_id"`
	ActID        *string   `json:"act_id,omitempty"`
	OrderIndex   int       `json:"order_index"`
	Title        string    `json:"title,omitempty"`
	POVCharacter string    `json:"pov_character,omitempty"` // 视角角色
	Summary      string    `json:"summary,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChapterPatch 表示对章节的部分字段更新
// ActID 非 nil 时会重新挂接到指定的幕（需通过所有权校验）
type ChapterPatch struct {
	ActID        *string
	OrderIndex   *int
	Title        *string
	POVCharacter *string
	Summary      *string
}

// IsEmpty 检查补丁是否不包含任何待更新字段
func (p *ChapterPatch) IsEmpty() bool {
	return p.ActID == nil && p.OrderIndex == nil && p.Title == nil &&
		p.POVCharacter == nil && p.Summary == nil
}

// internal/models/act.go
package models

import (
	"time"
)

// Act 表示故事内的顶层结构分段（如三幕结构中的一幕）
// 幕是粗粒度的结构标记，不承载正文内容，因此只记录创建时间
type Act struct {
	ID         string    `json:"id"`
	StoryID    string    `json:"story_id"`
	OrderIndex int       `json:"order_index"` // 展示顺序，无唯一性约束
	Title      string    `json:"title,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActPatch 表示对幕的部分字段更新
type ActPatch struct {
	OrderIndex *int
	Title      *string
	Summary    *string
}

// IsEmpty 检查补丁是否不包含任何待更新字段
func (p *ActPatch) IsEmpty() bool {
	return p.OrderIndex == nil && p.Title == nil && p.Summary == nil
}

// internal/models/story.go
package models

import (
	"time"
)

// StoryStatus 表示故事的创作阶段
type StoryStatus string

const (
	// StatusPlanning 构思阶段
	StatusPlanning StoryStatus = "PLANNING"
	// StatusDrafting 初稿阶段
	StatusDrafting StoryStatus = "DRAFTING"
	// StatusRevising 修订阶段
	StatusRevising StoryStatus = "REVISING"
	// StatusComplete 完稿
	StatusComplete StoryStatus = "COMPLETE"
)

// Story 表示用户拥有的故事规划根实体
// 所有权不可变更：user_id 在创建时确定，之后的每次访问都以它为准
type Story struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	Logline        string    `json:"logline,omitempty"`         // 一句话梗概
	Genre          string    `json:"genre,omitempty"`           // 类型（奇幻/悬疑等）
	TargetAudience string    `json:"target_audience,omitempty"` // 目标读者
	Status         string    `json:"status,omitempty"`          // 创作阶段
	Notes          string    `json:"notes,omitempty"`           // 自由备注
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StoryPatch 表示对故事的部分字段更新，nil 字段保持原值
type StoryPatch struct {
	Title          *string
	Logline        *string
	Genre          *string
	TargetAudience *string
	Status         *string
	Notes          *string
}

// IsEmpty 检查补丁是否不包含任何待更新字段
func (p *StoryPatch) IsEmpty() bool {
	return p.Title == nil && p.Logline == nil && p.Genre == nil &&
		p.TargetAudience == nil && p.Status == nil && p.Notes == nil
}

// internal/services/inputs.go
package services

import (
	"strings"

	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
)

// 各操作的输入结构与校验规则
// 规则分两类：必填标识字段非空；更新操作必须至少携带一个待更新字段。
// 创建操作的默认值（order_index 缺省为 1，可选上级引用缺省为无）在这里统一施加。

const defaultOrderIndex = 1

// 故事操作输入
// ----------------------------------------

// CreateStoryInput 创建故事
type CreateStoryInput struct {
	Title          string `json:"title"`
	Logline        string `json:"logline"`
	Genre          string `json:"genre"`
	TargetAudience string `json:"target_audience"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
}

// Validate 校验输入
func (in *CreateStoryInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperrors.NewValidationError("title 不能为空", nil)
	}
	return nil
}

// UpdateStoryInput 更新故事，nil 字段不参与更新
type UpdateStoryInput struct {
	ID             string  `json:"id"`
	Title          *string `json:"title"`
	Logline        *string `json:"logline"`
	Genre          *string `json:"genre"`
	TargetAudience *string `json:"target_audience"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
}

// Validate 校验输入：必须至少携带一个待更新字段
func (in *UpdateStoryInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return apperrors.NewValidationError("title 不能更新为空", nil)
	}
	if in.Title == nil && in.Logline == nil && in.Genre == nil &&
		in.TargetAudience == nil && in.Status == nil && in.Notes == nil {
		return apperrors.NewValidationError("更新操作至少需要提供一个字段", nil)
	}
	return nil
}

// 幕操作输入
// ----------------------------------------

// CreateActInput 创建幕
type CreateActInput struct {
	StoryID    string `json:"story_id"`
	OrderIndex *int   `json:"order_index"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
}

// Validate 校验输入
func (in *CreateActInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	return nil
}

// 幕的展示顺序，缺省为 1
func (in *CreateActInput) orderIndex() int {
	if in.OrderIndex == nil {
		return defaultOrderIndex
	}
	return *in.OrderIndex
}

// UpdateActInput 更新幕
type UpdateActInput struct {
	ID         string  `json:"id"`
	StoryID    string  `json:"story_id"`
	OrderIndex *int    `json:"order_index"`
	Title      *string `json:"title"`
	Summary    *string `json:"summary"`
}

// Validate 校验输入：必须至少携带一个待更新字段
func (in *UpdateActInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.OrderIndex == nil && in.Title == nil && in.Summary == nil {
		return apperrors.NewValidationError("更新操作至少需要提供一个字段", nil)
	}
	return nil
}

// DeleteActInput 删除幕
type DeleteActInput struct {
	ID      string `json:"id"`
	StoryID string `json:"story_id"`
}

// Validate 校验输入
func (in *DeleteActInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	return nil
}

// ListActsInput 列出某故事的幕
type ListActsInput struct {
	StoryID string `json:"story_id"`
}

// Validate 校验输入
func (in *ListActsInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	return nil
}

// 章节操作输入
// ----------------------------------------

// CreateChapterInput 创建章节；ActID 缺省表示不挂接到任何幕
type CreateChapterInput struct {
	StoryID      string  `json:"story_id"`
	ActID        *string `json:"act_id"`
	OrderIndex   *int    `json:"order_index"`
	Title        string  `json:"title"`
	POVCharacter string  `json:"pov_character"`
	Summary      string  `json:"summary"`
}

// Validate 校验输入
func (in *CreateChapterInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.ActID != nil && strings.TrimSpace(*in.ActID) == "" {
		return apperrors.NewValidationError("act_id 不能为空字符串", nil)
	}
	return nil
}

func (in *CreateChapterInput) orderIndex() int {
	if in.OrderIndex == nil {
		return defaultOrderIndex
	}
	return *in.OrderIndex
}

// UpdateChapterInput 更新章节
type UpdateChapterInput struct {
	ID           string  `json:"id"`
	StoryID      string  `json:"story_id"`
	ActID        *string `json:"act_id"`
	OrderIndex   *int    `json:"order_index"`
	Title        *string `json:"title"`
	POVCharacter *string `json:"pov_character"`
	Summary      *string `json:"summary"`
}

// Validate 校验输入：必须至少携带一个待更新字段
func (in *UpdateChapterInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.ActID != nil && strings.TrimSpace(*in.ActID) == "" {
		return apperrors.NewValidationError("act_id 不能为空字符串", nil)
	}
	if in.ActID == nil && in.OrderIndex == nil && in.Title == nil &&
		in.POVCharacter == nil && in.Summary == nil {
		return apperrors.NewValidationError("更新操作至少需要提供一个字段", nil)
	}
	return nil
}

// DeleteChapterInput 删除章节
type DeleteChapterInput struct {
	ID      string `json:"id"`
	StoryID string `json:"story_id"`
}

// Validate 校验输入
func (in *DeleteChapterInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	return nil
}

// ListChaptersInput 列出某故事的章节；ActID 非空时收窄到指定幕
type ListChaptersInput struct {
	StoryID string  `json:"story_id"`
	ActID   *string `json:"act_id"`
}

// Validate 校验输入
func (in *ListChaptersInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.ActID != nil && strings.TrimSpace(*in.ActID) == "" {
		return apperrors.NewValidationError("act_id 不能为空字符串", nil)
	}
	return nil
}

// 场景操作输入
// ----------------------------------------

// CreateSceneInput 创建场景；ChapterID 缺省表示不挂接到任何章节
type CreateSceneInput struct {
	StoryID    string  `json:"story_id"`
	ChapterID  *string `json:"chapter_id"`
	OrderIndex *int    `json:"order_index"`
	Setting    string  `json:"setting"`
	Goal       string  `json:"goal"`
	Conflict   string  `json:"conflict"`
	Outcome    string  `json:"outcome"`
	Content    string  `json:"content"`
}

// Validate 校验输入
func (in *CreateSceneInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.ChapterID != nil && strings.TrimSpace(*in.ChapterID) == "" {
		return apperrors.NewValidationError("chapter_id 不能为空字符串", nil)
	}
	return nil
}

func (in *CreateSceneInput) orderIndex() int {
	if in.OrderIndex == nil {
		return defaultOrderIndex
	}
	return *in.OrderIndex
}

// UpdateSceneInput 更新场景
type UpdateSceneInput struct {
	ID         string  `json:"id"`
	StoryID    string  `json:"story_id"`
	ChapterID  *string `json:"chapter_id"`
	OrderIndex *int    `json:"order_index"`
	Setting    *string `json:"setting"`
	Goal       *string `json:"goal"`
	Conflict   *string `json:"conflict"`
	Outcome    *string `json:"outcome"`
	Content    *string `json:"content"`
}

// Validate 校验输入：必须至少携带一个待更新字段
func (in *UpdateSceneInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.ChapterID != nil && strings.TrimSpace(*in.ChapterID) == "" {
		return apperrors.NewValidationError("chapter_id 不能为空字符串", nil)
	}
	if in.ChapterID == nil && in.OrderIndex == nil && in.Setting == nil &&
		in.Goal == nil && in.Conflict == nil && in.Outcome == nil && in.Content == nil {
		return apperrors.NewValidationError("更新操作至少需要提供一个字段", nil)
	}
	return nil
}

// DeleteSceneInput 删除场景
type DeleteSceneInput struct {
	ID      string `json:"id"`
	StoryID string `json:"story_id"`
}

// Validate 校验输入
func (in *DeleteSceneInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return apperrors.NewValidationError("id 不能为空", nil)
	}
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	return nil
}

// ListScenesInput 列出某故事的场景；ChapterID 非空时收窄到指定章节
type ListScenesInput struct {
	StoryID   string  `json:"story_id"`
	ChapterID *string `json:"chapter_id"`
}

// Validate 校验输入
func (in *ListScenesInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	if in.ChapterID != nil && strings.TrimSpace(*in.ChapterID) == "" {
		return apperrors.NewValidationError("chapter_id 不能为空字符串", nil)
	}
	return nil
}

// 导出操作输入
// ----------------------------------------

// ExportOutlineInput 导出故事大纲
type ExportOutlineInput struct {
	StoryID string `json:"story_id"`
	Format  string `json:"format"`
}

// Validate 校验输入
func (in *ExportOutlineInput) Validate() error {
	if strings.TrimSpace(in.StoryID) == "" {
		return apperrors.NewValidationError("story_id 不能为空", nil)
	}
	switch strings.ToLower(strings.TrimSpace(in.Format)) {
	case "", "json", "markdown":
		return nil
	default:
		return apperrors.NewValidationError("不支持的导出格式: "+in.Format, nil)
	}
}

// format 返回归一化后的导出格式，缺省为 json
func (in *ExportOutlineInput) format() string {
	f := strings.ToLower(strings.TrimSpace(in.Format))
	if f == "" {
		return "json"
	}
	return f
}

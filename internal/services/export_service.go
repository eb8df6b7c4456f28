// internal/services/export_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/auth"
	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/models"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
)

// ExportService 负责把整个故事的层级结构导出成大纲
type ExportService struct {
	Store     storage.Store
	Ownership *OwnershipService
}

// NewExportService 创建导出服务
func NewExportService(store storage.Store, ownership *OwnershipService) *ExportService {
	return &ExportService{
		Store:     store,
		Ownership: ownership,
	}
}

// ExportOutline 导出故事大纲
// 大纲按幕的 order_index 组织，章节挂到所属幕之下，场景挂到所属章节之下；
// 未指定 act_id 的章节和未指定 chapter_id 的场景收进单独的未分配区
func (s *ExportService) ExportOutline(ctx context.Context, in *ExportOutlineInput) (*models.ExportResult, error) {
	userID, err := auth.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	story, err := s.Ownership.ResolveStory(ctx, in.StoryID, userID)
	if err != nil {
		return nil, err
	}

	outline, err := s.assembleOutline(ctx, story)
	if err != nil {
		return nil, err
	}

	format := in.format()
	var content string
	switch format {
	case "json":
		raw, err := json.MarshalIndent(outline, "", "  ")
		if err != nil {
			return nil, apperrors.NewProcessingError("序列化大纲失败", err)
		}
		content = string(raw)
	case "markdown":
		content = s.renderMarkdown(outline)
	}

	return &models.ExportResult{
		StoryID:     story.ID,
		Title:       story.Title,
		Format:      format,
		Content:     content,
		GeneratedAt: outline.GeneratedAt,
	}, nil
}

// assembleOutline 读取故事全部子实体并组装层级大纲
func (s *ExportService) assembleOutline(ctx context.Context, story *models.Story) (*models.StoryOutline, error) {
	acts, err := s.Store.ListActsByStory(ctx, story.ID)
	if err != nil {
		return nil, apperrors.NewProcessingError("查询幕列表失败", err)
	}
	chapters, err := s.Store.ListChaptersByStory(ctx, story.ID)
	if err != nil {
		return nil, apperrors.NewProcessingError("查询章节列表失败", err)
	}
	scenes, err := s.Store.ListScenesByStory(ctx, story.ID)
	if err != nil {
		return nil, apperrors.NewProcessingError("查询场景列表失败", err)
	}

	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].OrderIndex < acts[j].OrderIndex
	})
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].OrderIndex < chapters[j].OrderIndex
	})
	sort.SliceStable(scenes, func(i, j int) bool {
		return scenes[i].OrderIndex < scenes[j].OrderIndex
	})

	scenesByChapter := make(map[string][]models.Scene)
	var unassignedScenes []models.Scene
	for _, scene := range scenes {
		if scene.ChapterID == nil {
			unassignedScenes = append(unassignedScenes, scene)
			continue
		}
		scenesByChapter[*scene.ChapterID] = append(scenesByChapter[*scene.ChapterID], scene)
	}

	chaptersByAct := make(map[string][]models.OutlineChapter)
	var unassignedChapters []models.OutlineChapter
	for _, chapter := range chapters {
		entry := models.OutlineChapter{
			Chapter: chapter,
			Scenes:  scenesByChapter[chapter.ID],
		}
		if chapter.ActID == nil {
			unassignedChapters = append(unassignedChapters, entry)
			continue
		}
		chaptersByAct[*chapter.ActID] = append(chaptersByAct[*chapter.ActID], entry)
	}

	outlineActs := make([]models.OutlineAct, 0, len(acts))
	for _, act := range acts {
		outlineActs = append(outlineActs, models.OutlineAct{
			Act:      act,
			Chapters: chaptersByAct[act.ID],
		})
	}

	return &models.StoryOutline{
		Story:              *story,
		Acts:               outlineActs,
		UnassignedChapters: unassignedChapters,
		UnassignedScenes:   unassignedScenes,
		GeneratedAt:        time.Now(),
	}, nil
}

// renderMarkdown 生成 Markdown 格式的大纲文本
func (s *ExportService) renderMarkdown(outline *models.StoryOutline) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", outline.Story.Title))
	if outline.Story.Logline != "" {
		b.WriteString(fmt.Sprintf("> %s\n\n", outline.Story.Logline))
	}
	b.WriteString(fmt.Sprintf("- **类型**: %s\n", valueOrDash(outline.Story.Genre)))
	b.WriteString(fmt.Sprintf("- **目标读者**: %s\n", valueOrDash(outline.Story.TargetAudience)))
	b.WriteString(fmt.Sprintf("- **状态**: %s\n", outline.Story.Status))
	b.WriteString(fmt.Sprintf("- **导出时间**: %s\n\n", outline.GeneratedAt.Format("2006-01-02 15:04:05")))

	for _, act := range outline.Acts {
		b.WriteString(fmt.Sprintf("## 第 %d 幕: %s\n\n", act.Act.OrderIndex, act.Act.Title))
		if act.Act.Summary != "" {
			b.WriteString(act.Act.Summary)
			b.WriteString("\n\n")
		}
		for _, chapter := range act.Chapters {
			writeChapterMarkdown(&b, chapter)
		}
	}

	if len(outline.UnassignedChapters) > 0 {
		b.WriteString("## 未分配章节\n\n")
		for _, chapter := range outline.UnassignedChapters {
			writeChapterMarkdown(&b, chapter)
		}
	}

	if len(outline.UnassignedScenes) > 0 {
		b.WriteString("## 未分配场景\n\n")
		for _, scene := range outline.UnassignedScenes {
			writeSceneMarkdown(&b, scene)
		}
	}

	return b.String()
}

func writeChapterMarkdown(b *strings.Builder, chapter models.OutlineChapter) {
	b.WriteString(fmt.Sprintf("### 第 %d 章: %s\n\n", chapter.Chapter.OrderIndex, chapter.Chapter.Title))
	if chapter.Chapter.POVCharacter != "" {
		b.WriteString(fmt.Sprintf("- **视角角色**: %s\n", chapter.Chapter.POVCharacter))
	}
	if chapter.Chapter.Summary != "" {
		b.WriteString(fmt.Sprintf("- **概要**: %s\n", chapter.Chapter.Summary))
	}
	b.WriteString("\n")
	for _, scene := range chapter.Scenes {
		writeSceneMarkdown(b, scene)
	}
}

func writeSceneMarkdown(b *strings.Builder, scene models.Scene) {
	b.WriteString(fmt.Sprintf("#### 场景 %d\n\n", scene.OrderIndex))
	if scene.Setting != "" {
		b.WriteString(fmt.Sprintf("- **场地**: %s\n", scene.Setting))
	}
	if scene.Goal != "" {
		b.WriteString(fmt.Sprintf("- **目标**: %s\n", scene.Goal))
	}
	if scene.Conflict != "" {
		b.WriteString(fmt.Sprintf("- **冲突**: %s\n", scene.Conflict))
	}
	if scene.Outcome != "" {
		b.WriteString(fmt.Sprintf("- **结果**: %s\n", scene.Outcome))
	}
	b.WriteString("\n")
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// internal/services/dispatcher.go
package services

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/Corphon/StoryPlannerMCP/internal/errors"
	"github.com/Corphon/StoryPlannerMCP/internal/utils"
)

// Event 表示一次成功的写操作，用于向订阅同一故事的客户端广播
type Event struct {
	Operation string `json:"operation"`
	StoryID   string `json:"story_id"`
	EntityID  string `json:"entity_id,omitempty"`
}

// EventPublisher 把事件推送给故事的订阅者
type EventPublisher interface {
	PublishStoryEvent(event Event)
}

// opHandler 执行单个操作：返回响应数据和可选的广播事件
type opHandler func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error)

// Dispatcher 把操作名路由到对应的服务方法
// 操作名使用 camelCase，与请求路径 /api/ops/:operation 一一对应
type Dispatcher struct {
	Stories  *StoryService
	Acts     *ActService
	Chapters *ChapterService
	Scenes   *SceneService
	Exports  *ExportService

	Publisher EventPublisher

	handlers map[string]opHandler
	metrics  *utils.OperationMetrics
	logger   *utils.Logger
}

// NewDispatcher 创建操作分发器并注册全部操作
func NewDispatcher(stories *StoryService, acts *ActService, chapters *ChapterService,
	scenes *SceneService, exports *ExportService, publisher EventPublisher) *Dispatcher {
	d := &Dispatcher{
		Stories:   stories,
		Acts:      acts,
		Chapters:  chapters,
		Scenes:    scenes,
		Exports:   exports,
		Publisher: publisher,
		metrics:   utils.NewOperationMetrics(),
		logger:    utils.GetLogger(),
	}
	d.registerHandlers()
	return d
}

// Operations 返回全部已注册的操作名
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch 执行指定操作
// 未知操作名和无法解析的 JSON 均按参数校验失败处理
func (d *Dispatcher) Dispatch(ctx context.Context, operation string, payload json.RawMessage) (interface{}, error) {
	handler, ok := d.handlers[operation]
	if !ok {
		return nil, apperrors.NewValidationError("未知的操作: "+operation, nil)
	}

	start := time.Now()
	data, event, err := handler(ctx, payload)
	d.metrics.RecordOperation(operation, err == nil, time.Since(start))

	if err != nil {
		return nil, err
	}

	if event != nil && d.Publisher != nil {
		d.Publisher.PublishStoryEvent(*event)
	}
	return data, nil
}

func (d *Dispatcher) registerHandlers() {
	d.handlers = map[string]opHandler{
		// 故事
		"createStory": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in CreateStoryInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			story, err := d.Stories.CreateStory(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return story, &Event{Operation: "createStory", StoryID: story.ID, EntityID: story.ID}, nil
		},
		"updateStory": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in UpdateStoryInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			story, err := d.Stories.UpdateStory(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return story, &Event{Operation: "updateStory", StoryID: story.ID, EntityID: story.ID}, nil
		},
		"listStories": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			result, err := d.Stories.ListStories(ctx)
			if err != nil {
				return nil, nil, err
			}
			return result, nil, nil
		},

		// 幕
		"createStoryAct": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in CreateActInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			act, err := d.Acts.CreateAct(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return act, &Event{Operation: "createStoryAct", StoryID: act.StoryID, EntityID: act.ID}, nil
		},
		"updateStoryAct": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in UpdateActInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			act, err := d.Acts.UpdateAct(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return act, &Event{Operation: "updateStoryAct", StoryID: act.StoryID, EntityID: act.ID}, nil
		},
		"deleteStoryAct": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in DeleteActInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			if err := d.Acts.DeleteAct(ctx, &in); err != nil {
				return nil, nil, err
			}
			return nil, &Event{Operation: "deleteStoryAct", StoryID: in.StoryID, EntityID: in.ID}, nil
		},
		"listStoryActs": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in ListActsInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			result, err := d.Acts.ListActs(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return result, nil, nil
		},

		// 章节
		"createStoryChapter": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in CreateChapterInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			chapter, err := d.Chapters.CreateChapter(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return chapter, &Event{Operation: "createStoryChapter", StoryID: chapter.StoryID, EntityID: chapter.ID}, nil
		},
		"updateStoryChapter": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in UpdateChapterInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			chapter, err := d.Chapters.UpdateChapter(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return chapter, &Event{Operation: "updateStoryChapter", StoryID: chapter.StoryID, EntityID: chapter.ID}, nil
		},
		"deleteStoryChapter": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in DeleteChapterInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			if err := d.Chapters.DeleteChapter(ctx, &in); err != nil {
				return nil, nil, err
			}
			return nil, &Event{Operation: "deleteStoryChapter", StoryID: in.StoryID, EntityID: in.ID}, nil
		},
		"listStoryChapters": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in ListChaptersInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			result, err := d.Chapters.ListChapters(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return result, nil, nil
		},

		// 场景
		"createStoryScene": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in CreateSceneInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			scene, err := d.Scenes.CreateScene(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return scene, &Event{Operation: "createStoryScene", StoryID: scene.StoryID, EntityID: scene.ID}, nil
		},
		"updateStoryScene": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in UpdateSceneInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			scene, err := d.Scenes.UpdateScene(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return scene, &Event{Operation: "updateStoryScene", StoryID: scene.StoryID, EntityID: scene.ID}, nil
		},
		"deleteStoryScene": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in DeleteSceneInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			if err := d.Scenes.DeleteScene(ctx, &in); err != nil {
				return nil, nil, err
			}
			return nil, &Event{Operation: "deleteStoryScene", StoryID: in.StoryID, EntityID: in.ID}, nil
		},
		"listStoryScenes": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in ListScenesInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			result, err := d.Scenes.ListScenes(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return result, nil, nil
		},

		// 导出
		"exportStoryOutline": func(ctx context.Context, payload json.RawMessage) (interface{}, *Event, error) {
			var in ExportOutlineInput
			if err := decodePayload(payload, &in); err != nil {
				return nil, nil, err
			}
			result, err := d.Exports.ExportOutline(ctx, &in)
			if err != nil {
				return nil, nil, err
			}
			return result, nil, nil
		},
	}
}

// decodePayload 解析请求体；空请求体按空对象处理
func decodePayload(payload json.RawMessage, out interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.NewValidationError("请求参数格式错误", err)
	}
	return nil
}

// internal/app/app.go
package app

import (
	"fmt"

	"github.com/Corphon/StoryPlannerMCP/internal/api"
	"github.com/Corphon/StoryPlannerMCP/internal/config"
	"github.com/Corphon/StoryPlannerMCP/internal/di"
	"github.com/Corphon/StoryPlannerMCP/internal/services"
	"github.com/Corphon/StoryPlannerMCP/internal/storage"
	"github.com/Corphon/StoryPlannerMCP/internal/utils"
)

// InitServices 按依赖顺序创建全部服务并注册到容器
func InitServices(cfg *config.Config) error {
	container := di.GetContainer()

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("打开数据库失败: %w", err)
	}
	container.Register("store", store)

	ownership := services.NewOwnershipService(store)
	container.Register("ownership", ownership)

	storyService := services.NewStoryService(store, ownership)
	container.Register("story", storyService)

	actService := services.NewActService(store, ownership)
	container.Register("act", actService)

	chapterService := services.NewChapterService(store, ownership)
	container.Register("chapter", chapterService)

	sceneService := services.NewSceneService(store, ownership)
	container.Register("scene", sceneService)

	exportService := services.NewExportService(store, ownership)
	container.Register("export", exportService)

	userService := services.NewUserService(store)
	container.Register("user", userService)

	hub := api.NewStoryHub(ownership)
	container.Register("hub", hub)

	dispatcher := services.NewDispatcher(storyService, actService, chapterService,
		sceneService, exportService, hub)
	container.Register("dispatcher", dispatcher)

	utils.GetLogger().Info("services initialized", map[string]interface{}{
		"registered": len(container.GetNames()),
	})

	return nil
}

// CleanupServices 释放容器持有的资源
func CleanupServices() {
	container := di.GetContainer()

	if store, ok := container.Get("store").(storage.Store); ok {
		if err := store.Close(); err != nil {
			utils.GetLogger().Warn("close store failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	container.Clear()
}

// internal/api/router.go
package api

import (
	"fmt"

	"github.com/Corphon/StoryPlannerMCP/internal/config"
	"github.com/Corphon/StoryPlannerMCP/internal/di"
	"github.com/Corphon/StoryPlannerMCP/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置HTTP路由
// 只从容器获取服务，不创建新实例
func SetupRouter(cfg *config.Config) (*gin.Engine, error) {
	container := di.GetContainer()

	dispatcher, ok := container.Get("dispatcher").(*services.Dispatcher)
	if !ok {
		return nil, fmt.Errorf("操作分发器未正确初始化")
	}

	userService, ok := container.Get("user").(*services.UserService)
	if !ok {
		return nil, fmt.Errorf("用户服务未正确初始化")
	}

	hub, ok := container.Get("hub").(*StoryHub)
	if !ok {
		return nil, fmt.Errorf("WebSocket 订阅中心未正确初始化")
	}

	handler := NewHandler(dispatcher, userService, hub)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(AuthMiddleware())

	// WebSocket 支持
	r.GET("/ws/stories/:id", handler.StoryWebSocket)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		api.GET("/health", handler.HealthCheck)

		// 认证相关路由
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.RegisterUser)
		}

		// 用户相关路由
		userGroup := api.Group("/user")
		{
			userGroup.GET("/profile", handler.GetUserProfile)
		}

		// 规划操作统一入口
		api.POST("/ops/:operation", handler.DispatchOperation)
	}

	return r, nil
}

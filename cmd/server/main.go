// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/api"
	"github.com/Corphon/StoryPlannerMCP/internal/app"
	"github.com/Corphon/StoryPlannerMCP/internal/config"
	"github.com/Corphon/StoryPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("🚀 启动 StoryPlannerMCP 服务器...")

	// 1. 加载基础配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 配置加载完成，端口: %s", cfg.Port)

	// 2. 创建必要的目录
	createDirectories(cfg)
	log.Println("✅ 目录结构创建完成")

	// 3. 初始化日志
	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "server.log")); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	if cfg.DebugMode {
		utils.GetLogger().SetLogLevel(utils.DEBUG)
	}
	log.Println("✅ 日志系统初始化完成")

	// 4. 初始化认证系统
	if err := api.InitializeAuth(cfg); err != nil {
		log.Fatalf("初始化认证系统失败: %v", err)
	}
	log.Println("✅ 认证系统初始化完成")

	// 5. 初始化所有服务（按依赖顺序）
	if err := app.InitServices(cfg); err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}
	defer app.CleanupServices()
	log.Println("✅ 所有服务初始化完成")

	// 6. 设置路由
	router, err := api.SetupRouter(cfg)
	if err != nil {
		log.Fatalf("❌ 设置路由失败: %v", err)
	}
	log.Println("✅ 路由设置完成")

	// 7. 启动服务器
	log.Printf("🌐 服务器启动在端口 %s", cfg.Port)
	log.Printf("🔗 操作入口: http://localhost:%s/api/ops/{operation}", cfg.Port)

	setupGracefulShutdown(router, cfg.Port)
}

// 优雅关闭函数
func setupGracefulShutdown(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// 在新的 goroutine 中启动服务器
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ 启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号以进行优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ 服务器强制关闭: %v", err)
	}

	log.Println("✅ 服务器优雅关闭完成")
}

// createDirectories 创建应用所需的目录结构
func createDirectories(cfg *config.Config) {
	dirs := []string{
		cfg.DataDir,
		cfg.LogDir,
		filepath.Dir(cfg.DBPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("创建目录失败 %s: %v", dir, err)
		}
	}
}

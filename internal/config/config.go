// internal/config/config.go
package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config 存储应用配置
type Config struct {
	Port          string
	DataDir       string
	DBPath        string
	LogDir        string
	DebugMode     bool
	AuthSecretKey string
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:          getEnv("PORT", "8080"),
		DataDir:       getEnvPath("DATA_DIR", "data"),
		LogDir:        getEnvPath("LOG_DIR", "logs"),
		DebugMode:     getEnvBool("DEBUG_MODE", true),
		AuthSecretKey: getEnv("AUTH_SECRET_KEY", ""),
	}
	config.DBPath = getEnv("DB_PATH", filepath.Join(config.DataDir, "planner.db"))

	if config.AuthSecretKey == "" {
		// 只记录警告，不返回错误；启动时会生成随机密钥
		log.Println("警告: 未设置 AUTH_SECRET_KEY，重启后已签发的令牌将失效")
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Printf("警告: 创建目录 %s 失败: %v", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	switch value {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

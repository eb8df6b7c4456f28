// internal/api/handlers.go
package api

import (
	"encoding/json"
	"io"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/services"
	"github.com/Corphon/StoryPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler API处理器
type Handler struct {
	Dispatcher *services.Dispatcher
	Users      *services.UserService
	Hub        *StoryHub

	Responder *ResponseHelper
	logger    *utils.Logger
}

// NewHandler 创建API处理器
func NewHandler(dispatcher *services.Dispatcher, users *services.UserService, hub *StoryHub) *Handler {
	return &Handler{
		Dispatcher: dispatcher,
		Users:      users,
		Hub:        hub,
		Responder:  NewResponseHelper(),
		logger:     utils.GetLogger(),
	}
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DispatchOperation 执行规划操作
// POST /api/ops/:operation，请求体为该操作的JSON参数
func (h *Handler) DispatchOperation(c *gin.Context) {
	operation := c.Param("operation")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Responder.BadRequest(c, "读取请求体失败")
		return
	}

	data, err := h.Dispatcher.Dispatch(c.Request.Context(), operation, json.RawMessage(body))
	if err != nil {
		h.logger.Debug("operation rejected", map[string]interface{}{
			"operation":  operation,
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
		h.Responder.AppError(c, err)
		return
	}

	h.Responder.Success(c, data)
}

// RegisterUser 注册新用户并签发访问令牌
// POST /api/auth/register
func (h *Handler) RegisterUser(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.Responder.BadRequest(c, "请求参数格式错误")
		return
	}

	user, err := h.Users.CreateUser(c.Request.Context(), &input)
	if err != nil {
		h.Responder.AppError(c, err)
		return
	}

	token, err := GenerateUserToken(user.ID)
	if err != nil {
		h.Responder.InternalError(c, "签发访问令牌失败")
		return
	}

	h.logger.Info("user registered", map[string]interface{}{
		"user_id": user.ID,
	})

	h.Responder.Created(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// GetUserProfile 获取当前用户信息
// GET /api/user/profile
func (h *Handler) GetUserProfile(c *gin.Context) {
	userID, authenticated := GetUserFromContext(c)
	if !authenticated {
		h.Responder.Unauthorized(c, "未登录或凭证无效")
		return
	}

	user, err := h.Users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.Responder.AppError(c, err)
		return
	}

	if err := h.Users.TouchLogin(c.Request.Context(), userID); err != nil {
		h.logger.Warn("touch login failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	h.Responder.Success(c, user)
}

// HealthCheck 服务健康检查
// GET /api/health
func (h *Handler) HealthCheck(c *gin.Context) {
	h.Responder.Success(c, gin.H{
		"status":     "ok",
		"operations": len(h.Dispatcher.Operations()),
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

// StoryWebSocket 处理故事 WebSocket 连接
// GET /ws/stories/:id
func (h *Handler) StoryWebSocket(c *gin.Context) {
	h.Hub.HandleStoryWS(c)
}

// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corphon/StoryPlannerMCP/internal/services"
	"github.com/Corphon/StoryPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// storyClient 表示一个订阅了某故事的 WebSocket 客户端连接
type storyClient struct {
	conn    *websocket.Conn
	storyID string
	userID  string
	send    chan []byte
	closed  int32
}

// close 安全关闭客户端连接
func (client *storyClient) close() {
	if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
		client.conn.Close()
	}
}

func (client *storyClient) isClosed() bool {
	return atomic.LoadInt32(&client.closed) == 1
}

// StoryHub 管理按故事分组的 WebSocket 订阅
// 写操作成功后的事件通过 PublishStoryEvent 推送给该故事的全部订阅者
type StoryHub struct {
	Ownership *services.OwnershipService

	clients map[string]map[*storyClient]struct{} // storyID -> clients
	mutex   sync.RWMutex
	logger  *utils.Logger
}

// NewStoryHub 创建 WebSocket 订阅中心
func NewStoryHub(ownership *services.OwnershipService) *StoryHub {
	return &StoryHub{
		Ownership: ownership,
		clients:   make(map[string]map[*storyClient]struct{}),
		logger:    utils.GetLogger(),
	}
}

// PublishStoryEvent 向订阅同一故事的客户端广播事件
func (h *StoryHub) PublishStoryEvent(event services.Event) {
	message, err := json.Marshal(map[string]interface{}{
		"type":      "story_event",
		"operation": event.Operation,
		"story_id":  event.StoryID,
		"entity_id": event.EntityID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	h.mutex.RLock()
	subscribers := make([]*storyClient, 0, len(h.clients[event.StoryID]))
	for client := range h.clients[event.StoryID] {
		subscribers = append(subscribers, client)
	}
	h.mutex.RUnlock()

	for _, client := range subscribers {
		if client.isClosed() {
			continue
		}
		select {
		case client.send <- message:
		default:
			// 队列满，丢弃消息而不阻塞广播
			h.logger.Warn("websocket send queue full, message dropped", map[string]interface{}{
				"story_id": event.StoryID,
				"user_id":  client.userID,
			})
		}
	}
}

// HandleStoryWS 把HTTP连接升级为WebSocket并订阅指定故事
// 只有故事所有者可以订阅；非所有者与不存在的故事同样返回404
func (h *StoryHub) HandleStoryWS(c *gin.Context) {
	storyID := c.Param("id")
	userID, authenticated := GetUserFromContext(c)
	if !authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "未登录或凭证无效",
			"code":    ErrorUnauthorized,
		})
		return
	}

	if _, err := h.Ownership.ResolveStory(c.Request.Context(), storyID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "故事不存在",
			"code":    ErrorStoryNotFound,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", map[string]interface{}{
			"story_id": storyID,
			"error":    err.Error(),
		})
		return
	}

	client := &storyClient{
		conn:    conn,
		storyID: storyID,
		userID:  userID,
		send:    make(chan []byte, 64),
	}

	h.register(client)

	go h.writePump(client)
	go h.readPump(client)
}

func (h *StoryHub) register(client *storyClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.storyID] == nil {
		h.clients[client.storyID] = make(map[*storyClient]struct{})
	}
	h.clients[client.storyID][client] = struct{}{}
}

func (h *StoryHub) unregister(client *storyClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if subscribers, ok := h.clients[client.storyID]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.clients, client.storyID)
		}
	}
}

// writePump 把待发送消息写入连接，并周期性发送ping
func (h *StoryHub) writePump(client *storyClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.close()
	}()

	for {
		select {
		case message := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 消费客户端消息以驱动连接关闭与pong处理
// 订阅是只读的，客户端发来的数据除控制帧外全部忽略
func (h *StoryHub) readPump(client *storyClient) {
	// send 通道不关闭，writePump 在连接关闭后的下一次写入失败时退出，
	// 避免广播方与关闭方竞争向已关闭通道发送
	defer func() {
		h.unregister(client)
		client.close()
	}()

	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

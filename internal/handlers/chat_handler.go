// Package handlers 提供HTTP请求处理器
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"ai_chat_web/internal/models"
	"ai_chat_web/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sessionCookie 会话令牌cookie名
const sessionCookie = "session_id"

// ChatHandler 聊天请求处理器
type ChatHandler struct {
	chat      *services.ChatService
	documents models.DocumentIngestor
	upgrader  websocket.Upgrader
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(chat *services.ChatService, documents models.DocumentIngestor) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		documents: documents,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleChat 处理POST /chat请求，以SSE流式返回生成内容。
// 带PDF附件时走文档总结路径，否则走对话路径。
func (h *ChatHandler) HandleChat(c *gin.Context) {
	message := strings.TrimSpace(c.PostForm("message"))
	file, fileErr := c.FormFile("file")
	hasFile := fileErr == nil

	if message == "" && !hasFile {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message不能为空"})
		return
	}

	var fileData []byte
	var fileName string
	if hasFile {
		if !strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "只支持PDF附件"})
			return
		}

		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "读取附件失败"})
			return
		}
		fileData, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "读取附件失败"})
			return
		}
		fileName = file.Filename
	}

	sessionID := h.sessionID(c)

	// 进入SSE流式响应，此后所有失败都以事件形式下发
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	emit := func(ev models.StreamEvent) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("序列化事件失败: %v", err)
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return fmt.Errorf("写入事件失败: %v", err)
		}
		c.Writer.Flush()
		return c.Request.Context().Err()
	}

	ctx := c.Request.Context()

	if hasFile {
		doc, err := h.documents.Extract(fileName, fileData)
		if err != nil {
			log.Printf("文档提取失败: %v", err)
			if emitErr := emit(models.StreamEvent{Content: services.DocumentErrorMessage(err)}); emitErr != nil {
				log.Printf("发送文档错误事件失败: %v", emitErr)
			}
			return
		}
		h.chat.StreamDocument(ctx, doc, message, emit)
		return
	}

	h.chat.StreamChat(ctx, sessionID, message, emit)
}

// sessionID 从cookie获取会话令牌，缺失时生成新令牌并写回cookie
func (h *ChatHandler) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}

	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	return id
}

// wsRequest WebSocket请求帧
type wsRequest struct {
	Message string `json:"message"` // 用户消息
}

// wsReply WebSocket响应帧
type wsReply struct {
	Content string `json:"content,omitempty"` // 增量文本
	Done    bool   `json:"done,omitempty"`    // 本轮结束标记
}

// HandleWebSocket 处理WebSocket连接，提供与SSE等价的流式对话。
// 客户端逐条发送{"message": ...}，服务端按块回送{"content": ...}。
func (h *ChatHandler) HandleWebSocket(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("升级WebSocket连接失败: %v", err)
		return
	}

	sessionID := c.Query(sessionCookie)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	go h.handleWSSession(ws, sessionID)
}

// handleWSSession 处理单个WebSocket会话的消息循环。
// 读取放在独立协程里，连接断开时取消上下文，让生成中的上游请求及时释放。
func (h *ChatHandler) handleWSSession(ws *websocket.Conn, sessionID string) {
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	requests := make(chan wsRequest)
	go h.readWSRequests(ctx, ws, requests, cancel)

	for req := range requests {
		emit := func(ev models.StreamEvent) error {
			reply, err := json.Marshal(wsReply{Content: ev.Content})
			if err != nil {
				return fmt.Errorf("序列化响应失败: %v", err)
			}
			return ws.WriteMessage(websocket.TextMessage, reply)
		}

		h.chat.StreamChat(ctx, sessionID, req.Message, emit)

		done, _ := json.Marshal(wsReply{Done: true})
		if err := ws.WriteMessage(websocket.TextMessage, done); err != nil {
			log.Printf("发送结束帧失败: %v", err)
			return
		}
	}
}

// readWSRequests 持续读取客户端请求帧，连接关闭或读取出错时取消会话上下文
func (h *ChatHandler) readWSRequests(ctx context.Context, ws *websocket.Conn, requests chan<- wsRequest, cancel context.CancelFunc) {
	defer cancel()
	defer close(requests)

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			log.Printf("读取WebSocket消息失败: %v", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var req wsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("解析WebSocket消息失败: %v", err)
			continue
		}
		if strings.TrimSpace(req.Message) == "" {
			continue
		}

		select {
		case requests <- req:
		case <-ctx.Done():
			return
		}
	}
}

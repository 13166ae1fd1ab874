package routes

import (
	"ai_chat_web/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册聊天相关路由
func RegisterChatRoutes(r *gin.Engine, h *handlers.ChatHandler) {
	// SSE流式对话
	r.POST("/chat", h.HandleChat)

	// WebSocket流式对话
	r.GET("/ws/chat", h.HandleWebSocket)
}

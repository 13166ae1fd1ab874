// Package routes 注册HTTP路由
package routes

import (
	"time"

	"ai_chat_web/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, chatHandler *handlers.ChatHandler) {

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ai_chat_web",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// 注册聊天路由
	RegisterChatRoutes(r, chatHandler)
}

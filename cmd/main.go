package main

import (
	"fmt"
	"log"

	"ai_chat_web/internal/clients/ollama"
	"ai_chat_web/internal/clients/search"
	"ai_chat_web/internal/config"
	"ai_chat_web/internal/handlers"
	"ai_chat_web/internal/middleware"
	"ai_chat_web/internal/routes"
	"ai_chat_web/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("AI 聊天服务启动中...")

	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Search.APIKey == "" {
		log.Println("未配置搜索API密钥，搜索增强功能降级")
	}

	// 创建客户端
	ollamaClient := ollama.NewClient(ollama.Config{
		Host:  cfg.Ollama.Host,
		Model: cfg.Ollama.Model,
	})

	// 创建服务
	sessionService := services.NewSessionService()
	searchService := services.NewSearchService(search.Config{
		Endpoint: cfg.Search.Endpoint,
		APIKey:   cfg.Search.APIKey,
	}, cfg.Search.MaxResults)
	documentService := services.NewDocumentService(cfg.Upload.MaxPDFSize)
	promptService := services.NewPromptService()
	chatService := services.NewChatService(ollamaClient, sessionService, searchService, promptService, cfg.Ollama)

	// 创建处理器
	chatHandler := handlers.NewChatHandler(chatService, documentService)

	// 创建HTTP服务器
	r := gin.New()
	middleware.Setup(r)
	routes.RegisterRoutes(r, chatHandler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("服务监听于 %s，对外地址: http://%s:%d，模型: %s",
		addr, cfg.Server.PublicHost, cfg.Server.Port, cfg.Ollama.Model)
	if err := r.Run(addr); err != nil {
		log.Fatalf("启动HTTP服务失败: %v", err)
	}
}

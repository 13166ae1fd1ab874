package services

import (
	"context"
	"log"
	"strings"
	"time"

	"ai_chat_web/internal/clients/ollama"
	"ai_chat_web/internal/config"
	"ai_chat_web/internal/models"
)

const (
	// historyWindow 组装提示词时携带的最大历史条数
	historyWindow = 4

	// fallbackPromptLimit 兜底生成使用的原始文本前缀长度（字符数）
	fallbackPromptLimit = 1000

	// fallbackMaxTokens 兜底生成的token预算
	fallbackMaxTokens = 256

	// fallbackTimeout 兜底生成的超时预算
	fallbackTimeout = 15 * time.Second
)

// 主流式生成失败时发送给客户端的人设风格提示
const generationErrorMessage = "Well shoot, partner! I hit a snag talking to my brain back at the ranch. " +
	"Give it another try in a moment."

// 主生成没有产出任何内容时的诊断提示
const emptyGenerationNotice = "Hmm, I came up empty there, partner. Let me take one more crack at it... "

// EmitFunc 把一个流式事件推送给客户端
type EmitFunc func(models.StreamEvent) error

// ChatService 按请求编排整个生成流程：
// 会话读写、搜索增强、提示词组装、流式转发和兜底生成。
type ChatService struct {
	ollama   *ollama.Client
	sessions models.SessionStore
	search   *SearchService
	prompts  *PromptService
	cfg      config.Ollama
}

// NewChatService 创建新的聊天服务
func NewChatService(client *ollama.Client, sessions models.SessionStore, search *SearchService, prompts *PromptService, cfg config.Ollama) *ChatService {
	return &ChatService{
		ollama:   client,
		sessions: sessions,
		search:   search,
		prompts:  prompts,
		cfg:      cfg,
	}
}

// Sessions 返回底层会话存储
func (s *ChatService) Sessions() models.SessionStore {
	return s.sessions
}

// StreamChat 处理一轮对话：更新会话、按需搜索、组装提示词并流式输出。
// 生成结束后把完整回复追加到会话历史，且只追加一次。
func (s *ChatService) StreamChat(ctx context.Context, sessionID, message string, emit EmitFunc) {
	firstTurn := s.sessions.HistoryLen(sessionID) == 0

	if name := DeriveName(message); name != "" {
		s.sessions.SetDerivedName(sessionID, name)
	}
	s.sessions.Append(sessionID, models.Message{Role: models.RoleUser, Content: message})

	var searchContext string
	if s.search.ShouldAugment(message) {
		searchContext = s.search.Augment(ctx, message)
	}

	recent := s.sessions.Recent(sessionID, historyWindow)
	messages := s.prompts.BuildChatPrompt(recent, firstTurn, s.sessions.DerivedName(sessionID), message, searchContext)

	opts := ollama.Options{
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		NumCtx:      s.cfg.NumCtx,
	}

	reply := s.relay(ctx, messages, opts, s.cfg.Timeout, message, emit)
	if reply != "" {
		s.sessions.Append(sessionID, models.Message{Role: models.RoleAssistant, Content: reply})
	}
}

// StreamDocument 处理文档总结请求。不读也不写会话历史。
func (s *ChatService) StreamDocument(ctx context.Context, doc models.ExtractedDocument, instruction string, emit EmitFunc) {
	messages := s.prompts.BuildDocumentPrompt(doc.Text, instruction)

	opts := ollama.Options{
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		NumCtx:      s.cfg.NumCtx,
		NumPredict:  s.cfg.SummaryMaxTokens,
	}

	s.relay(ctx, messages, opts, s.cfg.SummaryTimeout, doc.Text, emit)
}

// relay 驱动推理后端的流式生成：每个非空增量立即转发并累积，
// 不缓冲完整回复。主生成无产出时执行一次兜底生成；主生成出错时
// 发送一条人设风格的错误事件后正常结束。返回累积的完整文本。
func (s *ChatService) relay(ctx context.Context, messages []models.Message, opts ollama.Options, timeout time.Duration, fallbackSource string, emit EmitFunc) string {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var acc strings.Builder
	err := s.ollama.ChatStream(cctx, messages, opts, func(resp *ollama.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		acc.WriteString(resp.Message.Content)
		return emit(models.StreamEvent{Content: resp.Message.Content})
	})

	if err != nil {
		// 客户端断开时不再发送任何事件，保留已累积的部分回复
		if ctx.Err() != nil {
			log.Printf("客户端断开，流式生成中止: %v", err)
			return acc.String()
		}

		log.Printf("流式生成失败: %v", err)
		if emitErr := emit(models.StreamEvent{Content: generationErrorMessage}); emitErr != nil {
			log.Printf("发送错误事件失败: %v", emitErr)
		}
		return acc.String()
	}

	// 模型没有产出任何内容，执行一次兜底生成
	if acc.Len() == 0 {
		log.Printf("主生成无产出，尝试兜底生成")
		if emitErr := emit(models.StreamEvent{Content: emptyGenerationNotice}); emitErr != nil {
			log.Printf("发送诊断事件失败: %v", emitErr)
			return ""
		}

		if text := s.fallbackGenerate(ctx, fallbackSource); text != "" {
			acc.WriteString(text)
			if emitErr := emit(models.StreamEvent{Content: text}); emitErr != nil {
				log.Printf("发送兜底事件失败: %v", emitErr)
			}
		}
	}

	return acc.String()
}

// fallbackGenerate 用原始文本的截断前缀执行一次简化的非流式生成。
// 失败只记录日志，不再向客户端传播。
func (s *ChatService) fallbackGenerate(ctx context.Context, source string) string {
	prompt := "Respond briefly and helpfully to the following:\n\n" + truncateRunes(source, fallbackPromptLimit)

	fctx, cancel := context.WithTimeout(ctx, fallbackTimeout)
	defer cancel()

	resp, err := s.ollama.Generate(fctx, prompt, ollama.Options{
		Temperature: s.cfg.Temperature,
		NumPredict:  fallbackMaxTokens,
	})
	if err != nil {
		log.Printf("兜底生成失败: %v", err)
		return ""
	}
	if resp.Response == "" {
		log.Printf("兜底生成仍无产出")
	}

	return resp.Response
}

// truncateRunes 按字符数截断，避免切断多字节字符
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

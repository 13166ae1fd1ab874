package services

import (
	"fmt"
	"time"

	"ai_chat_web/internal/models"
)

// 助手人设提示词
const personaPrompt = "You are a friendly, helpful assistant with an easygoing cowboy manner. " +
	"You occasionally call the user \"partner\" and keep the tone warm and plain-spoken. " +
	"Answer questions directly and honestly, and say so when you don't know something."

// 搜索上下文的使用规则
const searchContextInstructions = "Use ONLY the web search results below to answer the user's question. " +
	"Cite which source you drew from. If the results don't contain the answer, say you aren't sure " +
	"rather than guessing.\n\nWeb search results:\n"

// 文档总结指令
const documentInstruction = "Please read the following document and give a concise summary of its key points."

// PromptService 组装发送给推理后端的消息列表
type PromptService struct{}

// NewPromptService 创建新的提示词组装服务
func NewPromptService() *PromptService {
	return &PromptService{}
}

// BuildChatPrompt 组装对话提示词。
// recent为已包含本轮用户消息的最近历史（最多4条，按时间顺序）。
// firstTurn为true时在最前面加入一条人设系统消息。
// searchContext非空时在历史后追加搜索上下文系统消息和重述的用户问题。
func (s *PromptService) BuildChatPrompt(recent []models.Message, firstTurn bool, derivedName, query, searchContext string) []models.Message {
	messages := make([]models.Message, 0, len(recent)+3)

	if firstTurn {
		system := personaPrompt + fmt.Sprintf(" Today's date is %s.", time.Now().Format("2006-01-02"))
		if derivedName != "" {
			system += fmt.Sprintf(" The user's name is %s.", derivedName)
		}
		messages = append(messages, models.Message{Role: models.RoleSystem, Content: system})
	}

	messages = append(messages, recent...)

	if searchContext != "" {
		messages = append(messages,
			models.Message{
				Role:    models.RoleSystem,
				Content: searchContextInstructions + searchContext,
			},
			models.Message{
				Role:    models.RoleUser,
				Content: fmt.Sprintf("Based on the search results above: %s", query),
			},
		)
	}

	return messages
}

// BuildDocumentPrompt 组装文档总结提示词。
// 刻意不携带会话历史，保证提示词大小只取决于附件本身。
func (s *PromptService) BuildDocumentPrompt(documentText, instruction string) []models.Message {
	messages := []models.Message{
		{Role: models.RoleSystem, Content: personaPrompt},
		{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("%s\n\n%s", documentInstruction, documentText),
		},
	}

	if instruction != "" {
		messages = append(messages, models.Message{Role: models.RoleUser, Content: instruction})
	}

	return messages
}

// Package models 定义基本数据类型
package models

// 消息角色常量
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对话消息
type Message struct {
	Role    string `json:"role"`    // 消息角色：system/user/assistant
	Content string `json:"content"` // 消息内容
}

// SearchResult 网络搜索结果
type SearchResult struct {
	Title       string `json:"title"`       // 来源标题
	URL         string `json:"url"`         // 来源链接
	Description string `json:"description"` // 摘要
}

// ExtractedDocument 提取后的文档文本
type ExtractedDocument struct {
	SourceName string // 原始文件名
	Text       string // 提取的纯文本
}

// StreamEvent 流式输出事件，逐块推送给客户端
type StreamEvent struct {
	Content string `json:"content"` // 增量文本
}

// DocumentIngestor 文档提取接口
type DocumentIngestor interface {
	// Extract 从文档字节中提取纯文本
	Extract(name string, data []byte) (ExtractedDocument, error)
}

// SessionStore 会话存储接口
type SessionStore interface {
	// Append 追加一条消息到会话历史
	Append(sessionID string, msg Message)

	// Recent 获取最近limit条历史消息，按时间顺序排列
	Recent(sessionID string, limit int) []Message

	// HistoryLen 获取会话历史消息数量
	HistoryLen(sessionID string) int

	// SetDerivedName 设置从消息中推断出的用户称呼
	SetDerivedName(sessionID, name string)

	// DerivedName 获取推断出的用户称呼
	DerivedName(sessionID string) string
}

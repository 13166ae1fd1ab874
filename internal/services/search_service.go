package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai_chat_web/internal/clients/search"
	"ai_chat_web/internal/models"
)

// TriggerPhrases 触发网络搜索的短语表，匹配为简单包含判断而非意图分类
var TriggerPhrases = []string{
	"search",
	"look up",
	"find",
	"get latest",
	"what is",
	"tell me about",
}

// 搜索功能未配置时注入提示词的固定说明
const searchUnavailableNotice = "[Web search is unavailable: no search API key is configured. " +
	"Let the user know you could not look anything up.]"

// SearchClient 搜索客户端接口
type SearchClient interface {
	Search(ctx context.Context, query string, count int) ([]models.SearchResult, error)
}

// SearchService 决定是否需要外部搜索上下文并格式化结果
type SearchService struct {
	client     SearchClient
	hasKey     bool
	maxResults int
}

// NewSearchService 创建新的搜索服务，apiKey为空时搜索功能降级为固定提示
func NewSearchService(cfg search.Config, maxResults int) *SearchService {
	return &SearchService{
		client:     search.NewClient(cfg),
		hasKey:     cfg.APIKey != "",
		maxResults: maxResults,
	}
}

// NewSearchServiceWithClient 使用自定义客户端创建搜索服务
func NewSearchServiceWithClient(client SearchClient, hasKey bool, maxResults int) *SearchService {
	return &SearchService{
		client:     client,
		hasKey:     hasKey,
		maxResults: maxResults,
	}
}

// ShouldAugment 判断消息是否需要补充搜索上下文
func (s *SearchService) ShouldAugment(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range TriggerPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Augment 执行搜索并格式化为上下文文本块。
// 所有失败路径都降级为描述性文本注入提示词，从不向上抛错。
func (s *SearchService) Augment(ctx context.Context, query string) string {
	if !s.hasKey {
		return searchUnavailableNotice
	}

	results, err := s.client.Search(ctx, query, s.maxResults)
	if err != nil {
		log.Printf("搜索请求失败: %v", err)
		return fmt.Sprintf("[Web search failed: %v. Let the user know you could not find information.]", err)
	}

	if len(results) == 0 {
		return "[Web search returned no results for this query.]"
	}

	return FormatResults(results)
}

// FormatResults 将搜索结果格式化为带分隔符的文本块，保持原始顺序
func FormatResults(results []models.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Source: %s\nURL: %s\nSummary: %s", r.Title, r.URL, r.Description))
	}
	return strings.Join(blocks, "\n---\n")
}

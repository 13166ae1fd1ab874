package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"ai_chat_web/internal/models"
)

// fakeSearchClient 测试用搜索客户端
type fakeSearchClient struct {
	results []models.SearchResult
	err     error
	calls   int
}

func (f *fakeSearchClient) Search(ctx context.Context, query string, count int) ([]models.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestSearchService_ShouldAugment(t *testing.T) {
	s := NewSearchServiceWithClient(&fakeSearchClient{}, true, 3)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"包含search", "please search for cowboy hats", true},
		{"包含look up", "Look Up the capital of France", true},
		{"包含what is", "what is quantum computing", true},
		{"包含tell me about", "tell me about the gold rush", true},
		{"普通寒暄", "howdy, how are you doing", false},
		{"空消息", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShouldAugment(tt.text); got != tt.want {
				t.Errorf("ShouldAugment(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSearchService_AugmentFormatsResults(t *testing.T) {
	client := &fakeSearchClient{
		results: []models.SearchResult{
			{Title: "X", URL: "http://x", Description: "Y"},
			{Title: "Z", URL: "http://z", Description: "W"},
		},
	}
	s := NewSearchServiceWithClient(client, true, 3)

	block := s.Augment(context.Background(), "search for today's weather")

	for _, want := range []string{"X", "http://x", "Y", "Z"} {
		if !strings.Contains(block, want) {
			t.Errorf("上下文块缺少%q: %s", want, block)
		}
	}
	if !strings.Contains(block, "---") {
		t.Errorf("上下文块缺少分隔符: %s", block)
	}

	// 顺序应保持提供方返回顺序
	if strings.Index(block, "X") > strings.Index(block, "Z") {
		t.Errorf("结果顺序被打乱: %s", block)
	}
}

func TestSearchService_AugmentMissingKey(t *testing.T) {
	client := &fakeSearchClient{}
	s := NewSearchServiceWithClient(client, false, 3)

	got := s.Augment(context.Background(), "search something")
	if got == "" {
		t.Fatal("缺失密钥时应返回固定提示而非空字符串")
	}
	if client.calls != 0 {
		t.Errorf("缺失密钥时不应调用搜索客户端，实际调用%d次", client.calls)
	}
}

func TestSearchService_AugmentTransportFailure(t *testing.T) {
	client := &fakeSearchClient{err: fmt.Errorf("connection refused")}
	s := NewSearchServiceWithClient(client, true, 3)

	got := s.Augment(context.Background(), "search something")
	if got == "" {
		t.Fatal("传输失败时应返回描述性提示而非空字符串")
	}
	if !strings.Contains(got, "failed") {
		t.Errorf("提示应说明搜索失败: %s", got)
	}
}

func TestSearchService_AugmentNoResults(t *testing.T) {
	s := NewSearchServiceWithClient(&fakeSearchClient{}, true, 3)

	got := s.Augment(context.Background(), "search something obscure")
	if got == "" {
		t.Fatal("无结果时应返回提示而非空字符串")
	}
}

package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"ai_chat_web/internal/models"
)

func TestDocumentService_SizeBoundary(t *testing.T) {
	const limit = 1024
	s := NewDocumentService(limit)

	// 恰好等于上限的输入应通过大小检查（内容非法则落入解析错误）
	atLimit := bytes.Repeat([]byte("a"), limit)
	_, err := s.Extract("at_limit.pdf", atLimit)
	if errors.Is(err, models.ErrDocumentTooLarge) {
		t.Errorf("等于上限的文档不应返回ErrDocumentTooLarge")
	}

	// 超过上限1字节应返回ErrDocumentTooLarge
	overLimit := bytes.Repeat([]byte("a"), limit+1)
	_, err = s.Extract("over_limit.pdf", overLimit)
	if !errors.Is(err, models.ErrDocumentTooLarge) {
		t.Errorf("超限文档错误 = %v, want ErrDocumentTooLarge", err)
	}
}

func TestDocumentService_ParseFailure(t *testing.T) {
	s := NewDocumentService(10 << 20)

	_, err := s.Extract("garbage.pdf", []byte("这不是一个PDF文件"))
	if !errors.Is(err, models.ErrDocumentParse) {
		t.Errorf("非法内容错误 = %v, want ErrDocumentParse", err)
	}
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name    string
		pages   []string
		want    string
		wantErr error
	}{
		{"正常多页", []string{"第一页", "第二页"}, "第一页\n第二页", nil},
		{"零页文档", nil, "", models.ErrDocumentEmpty},
		{"全空白页", []string{"  ", "\n\t", ""}, "", models.ErrNoExtractableText},
		{"首尾空白被去除", []string{"  正文  "}, "正文", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := joinPages(tt.pages)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("joinPages() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("joinPages() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("joinPages() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocumentErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"超限", models.ErrDocumentTooLarge, "hefty"},
		{"空文档", models.ErrDocumentEmpty, "empty"},
		{"无文本", models.ErrNoExtractableText, "readable text"},
		{"解析失败", models.ErrDocumentParse, "PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := DocumentErrorMessage(tt.err)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("DocumentErrorMessage() = %q, 应包含%q", msg, tt.want)
			}
		})
	}
}

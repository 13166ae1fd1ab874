package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"ai_chat_web/internal/models"
)

// DocumentService 将上传的PDF转换为纯文本，不做任何网络IO
type DocumentService struct {
	maxSize int64
}

// NewDocumentService 创建新的文档提取服务
func NewDocumentService(maxSize int64) *DocumentService {
	return &DocumentService{maxSize: maxSize}
}

// Extract 从PDF字节中提取纯文本
func (s *DocumentService) Extract(name string, data []byte) (models.ExtractedDocument, error) {
	if int64(len(data)) > s.maxSize {
		return models.ExtractedDocument{}, models.ErrDocumentTooLarge
	}

	pages, err := extractPages(data)
	if err != nil {
		return models.ExtractedDocument{}, fmt.Errorf("%w: %v", models.ErrDocumentParse, err)
	}

	text, err := joinPages(pages)
	if err != nil {
		return models.ExtractedDocument{}, err
	}

	return models.ExtractedDocument{SourceName: name, Text: text}, nil
}

// extractPages 逐页提取文本。解析库对损坏输入会panic，统一转为错误返回。
func extractPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("解析PDF时发生panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("提取第%d页失败: %v", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// joinPages 用换行符拼接各页文本并校验结果
func joinPages(pages []string) (string, error) {
	if len(pages) == 0 {
		return "", models.ErrDocumentEmpty
	}

	text := strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		// 常见于扫描件，整份文档没有文本层
		return "", models.ErrNoExtractableText
	}

	return text, nil
}

// DocumentErrorMessage 将文档错误类型映射为面向用户的提示文本
func DocumentErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrDocumentTooLarge):
		return "Whoa there, partner! That file's a bit too hefty for me. Keep it under 10 MB and we'll be in business."
	case errors.Is(err, models.ErrDocumentEmpty):
		return "Looks like that document is plumb empty, partner. There weren't any pages for me to read."
	case errors.Is(err, models.ErrNoExtractableText):
		return "I couldn't find any readable text in that document, partner. It might be a scanned copy or just images."
	case errors.Is(err, models.ErrDocumentParse):
		return "Had some trouble wrangling that PDF, partner. Mind checking the file and trying again?"
	default:
		return "Something went sideways reading that document, partner. Give it another go."
	}
}

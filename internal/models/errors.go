package models

import "errors"

// 文档提取错误类型
var (
	// ErrDocumentTooLarge 文档超过大小限制
	ErrDocumentTooLarge = errors.New("文档超过大小限制")

	// ErrDocumentEmpty 文档没有任何页面
	ErrDocumentEmpty = errors.New("文档没有任何页面")

	// ErrNoExtractableText 文档中没有可提取的文本
	ErrNoExtractableText = errors.New("文档中没有可提取的文本")

	// ErrDocumentParse 文档解析失败
	ErrDocumentParse = errors.New("文档解析失败")
)

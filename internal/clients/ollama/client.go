// Package ollama 提供Ollama推理后端客户端
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ai_chat_web/internal/models"
)

// Config Ollama客户端配置
type Config struct {
	Host  string // Ollama服务器地址（完整URL）
	Model string // 使用的模型名称
}

// Client Ollama客户端
type Client struct {
	config Config
	client *http.Client
}

// Options 生成选项
type Options struct {
	Temperature float64 `json:"temperature,omitempty"` // 温度参数
	TopP        float64 `json:"top_p,omitempty"`       // 核采样阈值
	NumCtx      int     `json:"num_ctx,omitempty"`     // 上下文窗口大小
	NumPredict  int     `json:"num_predict,omitempty"` // 最大生成token数
}

// ChatRequest 对话请求参数
type ChatRequest struct {
	Model    string           `json:"model"`             // 模型名称
	Messages []models.Message `json:"messages"`          // 有序消息列表
	Stream   bool             `json:"stream"`            // 是否流式输出
	Options  Options          `json:"options,omitempty"` // 可选参数
}

// ChatResponse 对话响应，流式模式下每个JSON行一条
type ChatResponse struct {
	Model     string         `json:"model"`      // 模型名称
	CreatedAt string         `json:"created_at"` // 创建时间
	Message   models.Message `json:"message"`    // 增量消息
	Done      bool           `json:"done"`       // 是否完成
}

// GenerateRequest 单轮生成请求参数
type GenerateRequest struct {
	Model   string  `json:"model"`             // 模型名称
	Prompt  string  `json:"prompt"`            // 提示词
	Stream  bool    `json:"stream"`            // 是否流式输出
	Options Options `json:"options,omitempty"` // 可选参数
}

// GenerateResponse 单轮生成响应
type GenerateResponse struct {
	Model     string `json:"model"`      // 模型名称
	CreatedAt string `json:"created_at"` // 创建时间
	Response  string `json:"response"`   // 生成的文本
	Done      bool   `json:"done"`       // 是否完成
}

// NewClient 创建新的Ollama客户端
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		// 超时由调用方通过context控制
		client: &http.Client{},
	}
}

// post 发送JSON请求并检查状态码，调用方负责关闭响应体
func (c *Client) post(ctx context.Context, path string, reqBody interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %v", err)
	}

	url := fmt.Sprintf("%s%s", c.config.Host, path)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("服务器返回错误: %s", string(body))
	}

	return resp, nil
}

// ChatStream 流式对话，每收到一个增量块调用一次callback
func (c *Client) ChatStream(ctx context.Context, messages []models.Message, options Options, callback func(*ChatResponse) error) error {
	reqBody := ChatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   true,
		Options:  options,
	}

	resp, err := c.post(ctx, "/api/chat", reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 逐行读取ndjson响应
	decoder := json.NewDecoder(resp.Body)
	for decoder.More() {
		var response ChatResponse
		if err := decoder.Decode(&response); err != nil {
			return fmt.Errorf("解析响应失败: %v", err)
		}

		if err := callback(&response); err != nil {
			return fmt.Errorf("处理响应失败: %v", err)
		}

		if response.Done {
			break
		}
	}

	return nil
}

// Generate 非流式单轮生成
func (c *Client) Generate(ctx context.Context, prompt string, options Options) (*GenerateResponse, error) {
	reqBody := GenerateRequest{
		Model:   c.config.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	}

	resp, err := c.post(ctx, "/api/generate", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var response GenerateResponse
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&response); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}

	return &response, nil
}

// Package search 提供网络搜索API客户端
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ai_chat_web/internal/models"
)

// Config 搜索客户端配置
type Config struct {
	Endpoint string // 搜索API地址
	APIKey   string // API密钥
}

// Client 搜索客户端
type Client struct {
	config Config
	client *http.Client
}

// searchResponse 搜索API响应格式
type searchResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// NewClient 创建新的搜索客户端
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Search 执行关键词搜索，结果数量不超过count，保持提供方返回顺序
func (c *Client) Search(ctx context.Context, query string, count int) ([]models.SearchResult, error) {
	reqURL := fmt.Sprintf("%s?q=%s&count=%s",
		c.config.Endpoint, url.QueryEscape(query), strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("搜索服务返回状态码%d", resp.StatusCode)
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("解析响应失败: %v", err)
	}

	results := make([]models.SearchResult, 0, count)
	for _, r := range response.Web.Results {
		if len(results) >= count {
			break
		}
		results = append(results, models.SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
		})
	}

	return results, nil
}

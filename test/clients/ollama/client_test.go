package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai_chat_web/internal/clients/ollama"
	"ai_chat_web/internal/models"
)

func TestClient_ChatStream(t *testing.T) {
	// 创建测试服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 检查请求方法和路径
		if r.Method != "POST" || r.URL.Path != "/api/chat" {
			t.Errorf("无效的请求: %s %s", r.Method, r.URL.Path)
			return
		}

		// 检查Content-Type
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("期望Content-Type为application/json，实际收到%s", r.Header.Get("Content-Type"))
		}

		// 解析请求体
		var req ollama.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("解析请求体失败: %v", err)
		}
		if !req.Stream {
			t.Error("期望流式请求")
		}
		if len(req.Messages) != 2 {
			t.Errorf("期望2条消息，实际收到%d条", len(req.Messages))
		}

		// 设置响应头
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("不支持流式响应")
			return
		}

		// 发送流式响应
		responses := []ollama.ChatResponse{
			{
				Model:   "test-model",
				Message: models.Message{Role: models.RoleAssistant, Content: "第一部分"},
				Done:    false,
			},
			{
				Model:   "test-model",
				Message: models.Message{Role: models.RoleAssistant, Content: "第二部分"},
				Done:    false,
			},
			{
				Model:   "test-model",
				Message: models.Message{Role: models.RoleAssistant, Content: "最后部分"},
				Done:    true,
			},
		}

		for _, resp := range responses {
			data, err := json.Marshal(resp)
			if err != nil {
				t.Errorf("序列化响应失败: %v", err)
				return
			}
			w.Write(data)
			w.Write([]byte("\n"))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond) // 模拟延迟
		}
	}))
	defer server.Close()

	// 创建客户端配置和客户端
	config := ollama.Config{
		Host:  server.URL,
		Model: "test-model",
	}
	client := ollama.NewClient(config)

	messages := []models.Message{
		{Role: models.RoleSystem, Content: "你是一个助手"},
		{Role: models.RoleUser, Content: "你好"},
	}

	// 测试流式对话
	var chunks []string
	err := client.ChatStream(context.Background(), messages, ollama.Options{}, func(resp *ollama.ChatResponse) error {
		chunks = append(chunks, resp.Message.Content)
		return nil
	})

	// 验证结果
	if err != nil {
		t.Errorf("ChatStream() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Errorf("期望收到3个响应，实际收到%d个", len(chunks))
	}
	expectedChunks := []string{"第一部分", "第二部分", "最后部分"}
	for i, want := range expectedChunks {
		if i >= len(chunks) {
			t.Errorf("缺少响应#%d", i+1)
			continue
		}
		if chunks[i] != want {
			t.Errorf("响应#%d = %v, want %v", i+1, chunks[i], want)
		}
	}
}

func TestClient_Generate(t *testing.T) {
	// 创建测试服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 检查请求路径
		if r.URL.Path != "/api/generate" {
			t.Errorf("期望路径/api/generate，实际收到%s", r.URL.Path)
		}

		// 解析请求体
		var req ollama.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("解析请求体失败: %v", err)
		}
		if req.Stream {
			t.Error("期望非流式请求")
		}

		// 返回模拟响应
		resp := ollama.GenerateResponse{
			Model:     "test-model",
			CreatedAt: time.Now().Format(time.RFC3339),
			Response:  "这是一个测试响应",
			Done:      true,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	// 创建客户端
	client := ollama.NewClient(ollama.Config{
		Host:  server.URL,
		Model: "test-model",
	})

	resp, err := client.Generate(context.Background(), "你好", ollama.Options{
		Temperature: 0.7,
		NumPredict:  100,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Response != "这是一个测试响应" {
		t.Errorf("Generate() = %v, want 这是一个测试响应", resp.Response)
	}
	if !resp.Done {
		t.Error("Generate() response not done")
	}
}

func TestClient_Errors(t *testing.T) {
	// 创建测试服务器处理错误情况
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 返回500错误
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("服务器内部错误"))
	}))
	defer server.Close()

	client := ollama.NewClient(ollama.Config{
		Host:  server.URL,
		Model: "test-model",
	})

	// 测试错误处理
	_, err := client.Generate(context.Background(), "测试错误处理", ollama.Options{})
	if err == nil {
		t.Error("期望收到错误，但没有收到")
	}

	err = client.ChatStream(context.Background(), []models.Message{{Role: models.RoleUser, Content: "hi"}}, ollama.Options{}, func(resp *ollama.ChatResponse) error {
		return nil
	})
	if err == nil {
		t.Error("期望收到错误，但没有收到")
	}

	// 测试超时取消
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(5 * time.Millisecond)
	_, err = client.Generate(ctx, "测试超时", ollama.Options{})
	if err == nil {
		t.Error("期望超时错误，但没有收到")
	}
}

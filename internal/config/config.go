// Package config 提供配置加载和管理功能
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var globalConfig *Config

// Config 应用程序配置结构
type Config struct {
	Server Server `yaml:"server"`
	Ollama Ollama `yaml:"ollama"`
	Search Search `yaml:"search"`
	Upload Upload `yaml:"upload"`
}

// Server HTTP服务器配置
type Server struct {
	Host       string `yaml:"host"`        // 服务器监听地址
	Port       int    `yaml:"port"`        // 服务器监听端口
	PublicHost string `yaml:"public_host"` // 客户端可见的主机名
}

// Ollama 推理后端配置
type Ollama struct {
	Host             string        `yaml:"host"`               // Ollama服务器地址（完整URL）
	Model            string        `yaml:"model"`              // 模型名称
	Temperature      float64       `yaml:"temperature"`        // 温度参数
	TopP             float64       `yaml:"top_p"`              // 核采样阈值
	NumCtx           int           `yaml:"num_ctx"`            // 上下文窗口大小
	Timeout          time.Duration `yaml:"timeout"`            // 普通生成超时
	SummaryTimeout   time.Duration `yaml:"summary_timeout"`    // 文档总结超时
	SummaryMaxTokens int           `yaml:"summary_max_tokens"` // 文档总结最大token数
}

// Search 网络搜索配置
type Search struct {
	Endpoint   string `yaml:"endpoint"`    // 搜索API地址
	APIKey     string `yaml:"api_key"`     // 搜索API密钥，缺失时搜索功能降级
	MaxResults int    `yaml:"max_results"` // 单次查询最大结果数
}

// Upload 上传限制配置
type Upload struct {
	MaxPDFSize int64 `yaml:"max_pdf_size"` // PDF文件大小上限（字节）
}

// GetConfig 获取全局配置实例
func GetConfig() *Config {
	return globalConfig
}

// Load 从文件加载配置，文件不存在时使用默认值，环境变量优先级最高
func Load(filename string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %v", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取配置文件失败: %v", err)
	}

	// 设置默认值
	applyDefaults(&config)

	// 应用环境变量覆盖
	applyEnvOverrides(&config)

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("配置验证失败: %v", err)
	}

	// 设置全局配置
	globalConfig = &config

	return &config, nil
}

// applyDefaults 设置默认值
func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8000
	}
	if config.Server.PublicHost == "" {
		config.Server.PublicHost = "localhost"
	}
	if config.Ollama.Host == "" {
		config.Ollama.Host = "http://localhost:11434"
	}
	if config.Ollama.Model == "" {
		config.Ollama.Model = "llama3.2:latest"
	}
	if config.Ollama.Temperature == 0 {
		config.Ollama.Temperature = 0.7
	}
	if config.Ollama.TopP == 0 {
		config.Ollama.TopP = 0.9
	}
	if config.Ollama.NumCtx == 0 {
		config.Ollama.NumCtx = 4096
	}
	if config.Ollama.Timeout == 0 {
		config.Ollama.Timeout = 30 * time.Second
	}
	if config.Ollama.SummaryTimeout == 0 {
		config.Ollama.SummaryTimeout = 120 * time.Second
	}
	if config.Ollama.SummaryMaxTokens == 0 {
		config.Ollama.SummaryMaxTokens = 1024
	}
	if config.Search.Endpoint == "" {
		config.Search.Endpoint = "https://api.search.brave.com/res/v1/web/search"
	}
	if config.Search.MaxResults == 0 {
		config.Search.MaxResults = 3
	}
	if config.Upload.MaxPDFSize == 0 {
		config.Upload.MaxPDFSize = 10 << 20 // 10 MiB
	}
}

// applyEnvOverrides 应用环境变量覆盖
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("PUBLIC_HOST"); v != "" {
		config.Server.PublicHost = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		config.Ollama.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		config.Ollama.Model = v
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		config.Search.APIKey = v
	}
}

// validateConfig 验证配置是否有效
func validateConfig(config *Config) error {
	// 验证服务器配置
	if config.Server.Host == "" {
		return fmt.Errorf("服务器地址不能为空")
	}
	if config.Server.Port <= 0 {
		return fmt.Errorf("服务器端口必须大于0")
	}

	// 验证Ollama配置
	if config.Ollama.Host == "" {
		return fmt.Errorf("Ollama服务器地址不能为空")
	}
	if config.Ollama.Model == "" {
		return fmt.Errorf("Ollama模型名称不能为空")
	}
	if config.Ollama.Temperature < 0 || config.Ollama.Temperature > 2 {
		return fmt.Errorf("温度参数必须在0到2之间")
	}
	if config.Ollama.TopP <= 0 || config.Ollama.TopP > 1 {
		return fmt.Errorf("核采样阈值必须在0到1之间")
	}

	// 搜索密钥缺失只是功能降级，不算配置错误
	if config.Search.MaxResults <= 0 {
		return fmt.Errorf("搜索结果数必须大于0")
	}

	// 验证上传配置
	if config.Upload.MaxPDFSize <= 0 {
		return fmt.Errorf("PDF大小上限必须大于0")
	}

	return nil
}

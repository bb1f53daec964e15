package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"cv-tailor-go/internal/constants"
)

// 环境变量覆盖项
const (
	EnvServerAddress        = "CVT_SERVER_ADDRESS"
	EnvOpenAICompatibleURL  = "CVT_OPENAI_COMPATIBLE_URL"
	EnvBrowserWSURL         = "CVT_BROWSER_WS_URL"
	EnvRedisAddress         = "CVT_REDIS_ADDRESS"
	EnvOTLPEndpoint         = "CVT_OTLP_ENDPOINT"
	defaultServerAddress    = ":8080"
	defaultMaxBodyBytes     = 20 << 20
	defaultRequestTimeout   = "90s"
	defaultRenderTimeout    = "60s"
	defaultMaxOutputTokens  = 8192
	defaultQPM              = 30
	defaultMaxRenderSession = 4
)

// Config 应用程序配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	LLM       LLMConfig       `yaml:"llm"`
	Renderer  RendererConfig  `yaml:"renderer"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address             string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
	MaxRequestBodyBytes int    `yaml:"max_request_body_bytes"`
	// 非空时 /api/v1/cv 和 /api/v1/profile 需要 X-Service-Key
	ServiceAPIKeys []string `yaml:"service_api_keys"`
	ExitWaitTime   string   `yaml:"exit_wait_time"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LLMConfig 文本生成相关配置。调用方的 API Key 随请求传入，不在配置中
type LLMConfig struct {
	// gemini-* 和 claude-* 以外的模型走这个 OpenAI 兼容地址
	OpenAICompatibleURL string         `yaml:"openai_compatible_url"`
	RequestTimeout      string         `yaml:"request_timeout"`
	MaxOutputTokens     int            `yaml:"max_output_tokens"`
	Temperature         float32        `yaml:"temperature"`
	ModelQPMLimits      map[string]int `yaml:"model_qpm_limits"`
	DefaultQPM          int            `yaml:"default_qpm"`
}

// RendererConfig PDF 渲染配置
type RendererConfig struct {
	// 为空时在本机启动 headless Chrome
	BrowserWSURL string        `yaml:"browser_ws_url"`
	ExecPath     string        `yaml:"exec_path"`
	MaxSessions  int           `yaml:"max_sessions"`
	Timeout      string        `yaml:"timeout"`
	Paper        string        `yaml:"paper"`
	Margins      MarginsConfig `yaml:"margins"`
}

// MarginsConfig 页边距，单位英寸
type MarginsConfig struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// RateLimitConfig 模型调用限流配置
type RateLimitConfig struct {
	Backend   string      `yaml:"backend"` // local 或 redis
	KeyPrefix string      `yaml:"key_prefix"`
	Redis     RedisConfig `yaml:"redis"`
}

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // 例如 "localhost:4317"
	Insecure     bool    `yaml:"insecure"`
	SampleRatio  float64 `yaml:"sample_ratio"`
}

// LoadConfig 从文件加载配置。configPath 为空时在常见位置查找，
// 都找不到则使用默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}

	config := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyEnvOverrides(config)
	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		"configs/config.yaml",
		filepath.Join(os.Getenv("HOME"), ".cv-tailor", "config.yaml"),
	}
	if execPath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(config *Config) {
	if v := os.Getenv(EnvServerAddress); v != "" {
		config.Server.Address = v
	}
	if v := os.Getenv(EnvOpenAICompatibleURL); v != "" {
		config.LLM.OpenAICompatibleURL = v
	}
	if v := os.Getenv(EnvBrowserWSURL); v != "" {
		config.Renderer.BrowserWSURL = v
	}
	if v := os.Getenv(EnvRedisAddress); v != "" {
		config.RateLimit.Redis.Address = v
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		config.Tracing.OTLPEndpoint = v
	}
}

// applyDefaults 为未设置的字段填充默认值
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = defaultServerAddress
	}
	if config.Server.MaxRequestBodyBytes <= 0 {
		config.Server.MaxRequestBodyBytes = defaultMaxBodyBytes
	}
	if config.Server.ExitWaitTime == "" {
		config.Server.ExitWaitTime = "10s"
	}

	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
	if config.Logger.Format == "" {
		config.Logger.Format = "json"
	}

	if config.LLM.RequestTimeout == "" {
		config.LLM.RequestTimeout = defaultRequestTimeout
	}
	if config.LLM.MaxOutputTokens <= 0 {
		config.LLM.MaxOutputTokens = defaultMaxOutputTokens
	}
	if config.LLM.DefaultQPM <= 0 {
		config.LLM.DefaultQPM = defaultQPM
	}

	if config.Renderer.MaxSessions <= 0 {
		config.Renderer.MaxSessions = defaultMaxRenderSession
	}
	if config.Renderer.Timeout == "" {
		config.Renderer.Timeout = defaultRenderTimeout
	}
	if config.Renderer.Paper == "" {
		config.Renderer.Paper = "A4"
	}
	if config.Renderer.Margins == (MarginsConfig{}) {
		config.Renderer.Margins = MarginsConfig{Top: 0.4, Right: 0.4, Bottom: 0.4, Left: 0.4}
	}

	if config.RateLimit.Backend == "" {
		config.RateLimit.Backend = "local"
	}
	if config.RateLimit.KeyPrefix == "" {
		config.RateLimit.KeyPrefix = constants.DefaultRateLimitKeyPrefix
	}
	if config.RateLimit.Redis.PoolSize == 0 {
		config.RateLimit.Redis.PoolSize = 10
	}
	if config.RateLimit.Redis.DialTimeoutSeconds == 0 {
		config.RateLimit.Redis.DialTimeoutSeconds = 5
	}
	if config.RateLimit.Redis.ReadTimeoutSeconds == 0 {
		config.RateLimit.Redis.ReadTimeoutSeconds = 3
	}
	if config.RateLimit.Redis.WriteTimeoutSeconds == 0 {
		config.RateLimit.Redis.WriteTimeoutSeconds = 3
	}

	if config.Tracing.ServiceName == "" {
		config.Tracing.ServiceName = constants.ServiceName
	}
	if config.Tracing.SampleRatio <= 0 {
		config.Tracing.SampleRatio = 1
	}
}

// Validate 校验互相依赖的配置项
func (c *Config) Validate() error {
	switch c.RateLimit.Backend {
	case "local":
	case "redis":
		if c.RateLimit.Redis.Address == "" {
			return fmt.Errorf("rate_limit.backend 为 redis 时必须配置 rate_limit.redis.address")
		}
	default:
		return fmt.Errorf("未知的 rate_limit.backend: %q", c.RateLimit.Backend)
	}
	if c.Tracing.Enabled && c.Tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.enabled 为 true 时必须配置 tracing.otlp_endpoint")
	}
	if !strings.EqualFold(c.Renderer.Paper, "A4") {
		return fmt.Errorf("暂不支持的纸张: %s", c.Renderer.Paper)
	}
	return nil
}

// QPMForModel 返回模型的每分钟请求上限，未单独配置时使用 default_qpm
func (c *LLMConfig) QPMForModel(modelID string) int {
	if qpm, ok := c.ModelQPMLimits[modelID]; ok && qpm > 0 {
		return qpm
	}
	if c.DefaultQPM > 0 {
		return c.DefaultQPM
	}
	return defaultQPM
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	config := &Config{}
	applyDefaults(config)
	config.LLM.OpenAICompatibleURL = "https://api.openai.com/v1/chat/completions"
	config.LLM.ModelQPMLimits = map[string]int{
		"gemini-2.0-flash":  1000,
		"claude-sonnet-4-5": 50,
		"gpt-4o-mini":       500,
	}
	config.Logger.Format = "pretty"
	config.Logger.TimeFormat = "2006-01-02 15:04:05"

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}

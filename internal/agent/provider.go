package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"cv-tailor-go/internal/config"
	"cv-tailor-go/pkg/ratelimit"
)

// ProviderKind 模型所属的服务商
type ProviderKind string

const (
	ProviderGemini           ProviderKind = "gemini"
	ProviderAnthropic        ProviderKind = "anthropic"
	ProviderOpenAICompatible ProviderKind = "openai_compatible"
)

// KindForModel 根据模型ID前缀判断服务商
func KindForModel(modelID string) ProviderKind {
	id := strings.ToLower(strings.TrimSpace(modelID))
	switch {
	case strings.HasPrefix(id, "gemini"):
		return ProviderGemini
	case strings.HasPrefix(id, "claude"):
		return ProviderAnthropic
	default:
		return ProviderOpenAICompatible
	}
}

// ChatModelFactory 按请求创建模型客户端，调用方的凭证只在本次请求内使用
type ChatModelFactory interface {
	NewChatModel(ctx context.Context, modelID, apiKey string) (model.BaseChatModel, error)
}

// ModelProvider 默认的 ChatModelFactory 实现，返回的模型都经过限流包装
type ModelProvider struct {
	openAICompatibleURL string
	httpClient          *http.Client
	limiter             ratelimit.Limiter
}

// NewModelProvider 创建 ModelProvider。limiter 为 nil 时不限流
func NewModelProvider(cfg config.LLMConfig, limiter ratelimit.Limiter) *ModelProvider {
	return &ModelProvider{
		openAICompatibleURL: cfg.OpenAICompatibleURL,
		httpClient:          &http.Client{},
		limiter:             limiter,
	}
}

// NewChatModel 实现 ChatModelFactory
func (p *ModelProvider) NewChatModel(ctx context.Context, modelID, apiKey string) (model.BaseChatModel, error) {
	var (
		chat model.BaseChatModel
		err  error
	)
	switch KindForModel(modelID) {
	case ProviderGemini:
		chat, err = NewGeminiChatModel(ctx, apiKey, modelID)
	case ProviderAnthropic:
		chat, err = NewAnthropicChatModel(apiKey, modelID)
	default:
		chat, err = NewOpenAICompatibleChatModel(apiKey, modelID, p.openAICompatibleURL, p.httpClient)
	}
	if err != nil {
		return nil, fmt.Errorf("创建模型 %s 失败: %w", modelID, err)
	}

	if p.limiter == nil {
		return chat, nil
	}
	return ratelimit.NewRateLimitedChatModel(chat, p.limiter, modelID), nil
}

var _ ChatModelFactory = (*ModelProvider)(nil)

// StaticFactory 总是返回同一个模型，用于测试和本地调试
type StaticFactory struct {
	Model model.BaseChatModel
}

// NewChatModel 实现 ChatModelFactory
func (f StaticFactory) NewChatModel(ctx context.Context, modelID, apiKey string) (model.BaseChatModel, error) {
	if f.Model == nil {
		return nil, fmt.Errorf("StaticFactory 未配置模型")
	}
	return f.Model, nil
}

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"cv-tailor-go/internal/logger"
)

const defaultAnthropicMaxTokens = 8192

// AnthropicChatModel 通过 anthropic-sdk-go 调用 Claude
type AnthropicChatModel struct {
	client    anthropic.Client
	modelName string
}

// NewAnthropicChatModel 使用调用方的 API Key 创建 Claude 客户端
func NewAnthropicChatModel(apiKey, modelName string, opts ...option.RequestOption) (*AnthropicChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &AnthropicChatModel{
		client:    anthropic.NewClient(reqOpts...),
		modelName: modelName,
	}, nil
}

// Generate 实现 model.BaseChatModel 接口
func (m *AnthropicChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	opts := model.GetCommonOptions(&model.Options{}, options...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelName),
		MaxTokens: defaultAnthropicMaxTokens,
	}
	if opts.MaxTokens != nil && *opts.MaxTokens > 0 {
		params.MaxTokens = int64(*opts.MaxTokens)
	}
	if opts.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*opts.Temperature))
	}

	for _, msg := range messages {
		switch msg.Role {
		case schema.System:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
		case schema.Assistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Claude 调用失败: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		// 空回复交给解析阶段按结构错误处理
		logger.Ctx(ctx).Warn().Str("model", m.modelName).Str("stop_reason", string(resp.StopReason)).Msg("[Claude] 返回空内容")
	}
	return schema.AssistantMessage(sb.String(), nil), nil
}

// Stream 未实现
func (m *AnthropicChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("AnthropicChatModel 的 Stream 方法未实现")
}

var _ model.BaseChatModel = (*AnthropicChatModel)(nil)

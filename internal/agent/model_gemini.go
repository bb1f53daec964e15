package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"cv-tailor-go/internal/logger"
)

// GeminiChatModel 通过 google.golang.org/genai 调用 Gemini，要求返回 application/json
type GeminiChatModel struct {
	client    *genai.Client
	modelName string
}

// NewGeminiChatModel 使用调用方的 API Key 创建 Gemini 客户端
func NewGeminiChatModel(ctx context.Context, apiKey, modelName string) (*GeminiChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}
	return &GeminiChatModel{client: client, modelName: modelName}, nil
}

// Generate 实现 model.BaseChatModel 接口。system 消息合并为 SystemInstruction
func (m *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	opts := model.GetCommonOptions(&model.Options{}, options...)

	var systemParts []string
	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case schema.System:
			systemParts = append(systemParts, msg.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      opts.Temperature,
	}
	if len(systemParts) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}
	if opts.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*opts.MaxTokens)
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("Gemini 调用失败: %w", err)
	}
	text := resp.Text()
	if text == "" {
		// 空回复交给解析阶段按结构错误处理
		logger.Ctx(ctx).Warn().Str("model", m.modelName).Msg("[Gemini] 返回空内容")
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream 未实现
func (m *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GeminiChatModel 的 Stream 方法未实现")
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/tracing"
)

// OpenAICompatibleChatModel 对接任意 OpenAI 兼容的 chat/completions 接口。
// 地址来自配置，API Key 随请求传入
type OpenAICompatibleChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	httpClient *http.Client
}

// NewOpenAICompatibleChatModel 创建一个新的 OpenAICompatibleChatModel 实例
func NewOpenAICompatibleChatModel(apiKey, modelName, apiURL string, httpClient *http.Client) (*OpenAICompatibleChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("模型名称不能为空")
	}
	if strings.TrimSpace(apiURL) == "" {
		return nil, fmt.Errorf("未配置 llm.openai_compatible_url，无法使用模型 %s", modelName)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OpenAICompatibleChatModel{
		apiKey:     apiKey,
		modelName:  modelName,
		apiURL:     apiURL,
		httpClient: httpClient,
	}, nil
}

type openAIMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type openAIChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature *float32        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

type openAIChatChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAICompletionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []openAIChatChoice `json:"choices"`
}

// Generate 实现 model.BaseChatModel 接口
func (m *OpenAICompatibleChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	opts := model.GetCommonOptions(&model.Options{}, options...)

	reqPayload := openAIChatCompletionRequest{
		Model:       m.modelName,
		Messages:    make([]openAIMessage, 0, len(messages)),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, msg := range messages {
		content := msg.Content
		reqPayload.Messages = append(reqPayload.Messages, openAIMessage{Role: string(msg.Role), Content: &content})
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Ctx(ctx).Debug().Str("model", m.modelName).Int("messages", len(messages)).Msg("[OpenAI兼容模型] 发送请求")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, tracing.TruncateString(string(bodyBytes), tracing.DefaultMaxLength))
	}

	var resp openAICompletionResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("从 API 收到空选项")
	}

	content := ""
	if resp.Choices[0].Message.Content != nil {
		content = *resp.Choices[0].Message.Content
	}
	return schema.AssistantMessage(content, nil), nil
}

// Stream 未实现，流水线只使用 Generate
func (m *OpenAICompatibleChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OpenAICompatibleChatModel 的 Stream 方法未实现")
}

var _ model.BaseChatModel = (*OpenAICompatibleChatModel)(nil)

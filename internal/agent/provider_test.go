package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tailor-go/internal/config"
	"cv-tailor-go/pkg/ratelimit"
)

func TestKindForModel(t *testing.T) {
	assert.Equal(t, ProviderGemini, KindForModel("gemini-2.0-flash"))
	assert.Equal(t, ProviderGemini, KindForModel(" Gemini-1.5-pro "))
	assert.Equal(t, ProviderAnthropic, KindForModel("claude-sonnet-4-5"))
	assert.Equal(t, ProviderOpenAICompatible, KindForModel("gpt-4o-mini"))
	assert.Equal(t, ProviderOpenAICompatible, KindForModel("llama3.1"))
}

func TestModelProvider_RoutesAndWraps(t *testing.T) {
	provider := NewModelProvider(config.LLMConfig{OpenAICompatibleURL: "http://localhost:1/v1/chat/completions"},
		ratelimit.NewLocalLimiter(func(string) int { return 60 }))

	for _, id := range []string{"gemini-2.0-flash", "claude-sonnet-4-5", "gpt-4o-mini"} {
		chat, err := provider.NewChatModel(context.Background(), id, "test-key")
		require.NoError(t, err, id)
		assert.IsType(t, &ratelimit.RateLimitedChatModel{}, chat, id)
	}
}

func TestModelProvider_Errors(t *testing.T) {
	provider := NewModelProvider(config.LLMConfig{}, nil)

	_, err := provider.NewChatModel(context.Background(), "gpt-4o-mini", "test-key")
	assert.Error(t, err, "没有配置 OpenAI 兼容地址时应失败")

	_, err = provider.NewChatModel(context.Background(), "claude-sonnet-4-5", "")
	assert.Error(t, err)

	chat, err := provider.NewChatModel(context.Background(), "claude-sonnet-4-5", "k")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicChatModel{}, chat, "limiter 为 nil 时不包装")
}

func TestOpenAICompatibleChatModel_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","model":"local","choices":[{"index":0,"message":{"role":"assistant","content":"{\"name\":\"Jane\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	chat, err := NewOpenAICompatibleChatModel("test-key", "local", srv.URL, srv.Client())
	require.NoError(t, err)

	msg, err := chat.Generate(context.Background(),
		[]*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("hello")},
		model.WithTemperature(0.1), model.WithMaxTokens(100))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Jane"}`, msg.Content)

	assert.Equal(t, "local", got["model"])
	assert.EqualValues(t, 100, got["max_tokens"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAICompatibleChatModel_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	chat, err := NewOpenAICompatibleChatModel("bad", "local", srv.URL, nil)
	require.NoError(t, err)

	_, err = chat.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAnthropicChatModel_EmptyReplyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest","content":[],"stop_reason":"max_tokens","stop_sequence":null,"usage":{"input_tokens":3,"output_tokens":0}}`))
	}))
	defer srv.Close()

	chat, err := NewAnthropicChatModel("test-key", "claude-3-5-haiku-latest",
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	msg, err := chat.Generate(context.Background(), []*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("hello")})
	require.NoError(t, err, "空回复应由解析阶段判定为结构错误")
	require.NotNil(t, msg)
	assert.Equal(t, schema.Assistant, msg.Role)
	assert.Empty(t, msg.Content)
}

func TestMockChatClient(t *testing.T) {
	mock := NewMockChatClientSequential(MockResponse{Content: "a"}, MockResponse{Content: "b"})
	first, err := mock.Generate(context.Background(), []*schema.Message{schema.UserMessage("1")})
	require.NoError(t, err)
	second, err := mock.Generate(context.Background(), []*schema.Message{schema.UserMessage("2")})
	require.NoError(t, err)
	_, err = mock.Generate(context.Background(), nil)
	assert.Error(t, err)

	assert.Equal(t, "a", first.Content)
	assert.Equal(t, "b", second.Content)
	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "2", mock.GetReceivedMessages(1)[0].Content)
}

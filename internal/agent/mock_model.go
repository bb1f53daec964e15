package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse 定义了 MockChatClient 的单次预期响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatClient 是一个用于测试的 model.BaseChatModel 模拟实现。
// 记录调用次数与收到的消息，便于断言“没有调用模型”之类的行为
type MockChatClient struct {
	mu sync.Mutex

	// 固定响应
	ExpectedResponse string
	ExpectedError    error

	// 顺序响应
	SequentialResponses []MockResponse
	ResponseIndex       int
	IsSequential        bool

	ReceivedMessages [][]*schema.Message
	ReceivedOptions  []*model.Options
	Calls            int
}

// NewMockChatClient 创建一个返回固定响应的 MockChatClient
func NewMockChatClient(expectedResponse string, expectedError error) *MockChatClient {
	return &MockChatClient{
		ExpectedResponse: expectedResponse,
		ExpectedError:    expectedError,
	}
}

// NewMockChatClientSequential 创建一个按顺序返回不同响应的 MockChatClient
func NewMockChatClientSequential(responses ...MockResponse) *MockChatClient {
	if len(responses) == 0 {
		responses = []MockResponse{{Error: errors.New("mock client has no responses configured")}}
	}
	return &MockChatClient{
		SequentialResponses: responses,
		IsSequential:        true,
	}
}

// Generate 模拟 LLM 的 Generate 方法
func (m *MockChatClient) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	received := make([]*schema.Message, len(input))
	copy(received, input)
	m.ReceivedMessages = append(m.ReceivedMessages, received)
	m.ReceivedOptions = append(m.ReceivedOptions, model.GetCommonOptions(&model.Options{}, opts...))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if m.IsSequential {
		if m.ResponseIndex >= len(m.SequentialResponses) {
			return nil, errors.New("mock client has run out of sequential responses")
		}
		resp := m.SequentialResponses[m.ResponseIndex]
		m.ResponseIndex++
		if resp.Error != nil {
			return nil, resp.Error
		}
		return schema.AssistantMessage(resp.Content, nil), nil
	}

	if m.ExpectedError != nil {
		return nil, m.ExpectedError
	}
	return schema.AssistantMessage(m.ExpectedResponse, nil), nil
}

// Stream 模拟 LLM 的 Stream 方法
func (m *MockChatClient) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming not implemented in MockChatClient")
}

// CallCount 返回 Generate 被调用的次数
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// GetReceivedMessages 返回第 i 次调用收到的消息
func (m *MockChatClient) GetReceivedMessages(i int) []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.ReceivedMessages) {
		return nil
	}
	return m.ReceivedMessages[i]
}

var _ model.BaseChatModel = (*MockChatClient)(nil)

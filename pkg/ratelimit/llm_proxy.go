package ratelimit

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Limiter 按 key（模型ID）限制调用速率。Wait 阻塞到允许调用或 ctx 结束
type Limiter interface {
	Wait(ctx context.Context, key string) error
}

// QPMFunc 返回某个模型的每分钟调用上限
type QPMFunc func(modelID string) int

// RateLimitedChatModel 对模型调用进行限流的代理。只限流不重试
type RateLimitedChatModel struct {
	original model.BaseChatModel
	limiter  Limiter
	key      string
}

// NewRateLimitedChatModel 创建一个新的限流模型代理，key 通常为模型ID
func NewRateLimitedChatModel(original model.BaseChatModel, limiter Limiter, key string) *RateLimitedChatModel {
	return &RateLimitedChatModel{
		original: original,
		limiter:  limiter,
		key:      key,
	}
}

// Generate 等待令牌后调用原始模型
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	if err := rl.wait(ctx); err != nil {
		return nil, err
	}
	return rl.original.Generate(ctx, messages, options...)
}

// Stream 等待令牌后调用原始模型
func (rl *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if err := rl.wait(ctx); err != nil {
		return nil, err
	}
	return rl.original.Stream(ctx, messages, options...)
}

func (rl *RateLimitedChatModel) wait(ctx context.Context) error {
	if rl.limiter == nil {
		return nil
	}
	if err := rl.limiter.Wait(ctx, rl.key); err != nil {
		return fmt.Errorf("等待模型 %s 的限流令牌失败: %w", rl.key, err)
	}
	return nil
}

var _ model.BaseChatModel = (*RateLimitedChatModel)(nil)

package parser

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/tracing"
	"cv-tailor-go/internal/types"
)

// stageConfig 抽取和精选两个阶段共用的调用参数
type stageConfig struct {
	timeout     time.Duration
	temperature *float32
	maxTokens   int
}

// StageOption 阶段配置选项
type StageOption func(*stageConfig)

// WithCallTimeout 单次模型调用的超时时间，0 表示只受上游 ctx 约束
func WithCallTimeout(d time.Duration) StageOption {
	return func(c *stageConfig) {
		c.timeout = d
	}
}

// WithTemperature 设置采样温度
func WithTemperature(t float32) StageOption {
	return func(c *stageConfig) {
		c.temperature = &t
	}
}

// WithMaxOutputTokens 设置最大输出 token 数
func WithMaxOutputTokens(n int) StageOption {
	return func(c *stageConfig) {
		c.maxTokens = n
	}
}

func newStageConfig(opts []StageOption) stageConfig {
	cfg := stageConfig{timeout: 90 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c stageConfig) modelOptions() []model.Option {
	var opts []model.Option
	if c.temperature != nil {
		opts = append(opts, model.WithTemperature(*c.temperature))
	}
	if c.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(c.maxTokens))
	}
	return opts
}

// generate 调用一次模型并返回文本内容。不重试：
// 模型输出不确定，失败直接交给上层处理
func (c stageConfig) generate(ctx context.Context, chat model.BaseChatModel, stage string, msgs []*schema.Message) (string, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log := logger.Ctx(callCtx)
	if len(msgs) > 0 {
		log.Debug().Str("stage", stage).
			Str("prompt", tracing.TruncateString(msgs[len(msgs)-1].Content, tracing.MaxPromptLength)).
			Msg("调用模型")
	}

	start := time.Now()
	resp, err := chat.Generate(callCtx, msgs, c.modelOptions()...)
	if err != nil {
		return "", types.NewCollaboratorError(stage, "模型调用失败", err)
	}
	if resp == nil {
		return "", types.NewCollaboratorError(stage, "模型返回空消息", nil)
	}

	log.Debug().Str("stage", stage).
		Dur("duration", time.Since(start)).
		Int("response_len", len(resp.Content)).
		Str("response", tracing.TruncateString(resp.Content, tracing.MaxPromptLength)).
		Msg("模型返回")
	return resp.Content, nil
}

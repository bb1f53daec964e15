package parser

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"cv-tailor-go/internal/types"
)

// CVExtractor 把非结构化的个人资料文本转换成 ExtractedCV。
// 每次 Extract 恰好调用一次模型，不保存任何状态
type CVExtractor struct {
	cfg stageConfig
}

// NewCVExtractor 创建抽取器
func NewCVExtractor(opts ...StageOption) *CVExtractor {
	return &CVExtractor{cfg: newStageConfig(opts)}
}

// Extract 执行抽取。模型调用失败返回 types.ErrCollaborator，
// 输出无法解析为符合结构的对象时返回 types.ErrSchemaViolation
func (e *CVExtractor) Extract(ctx context.Context, chat model.BaseChatModel, rawText string) (*types.ExtractedCV, error) {
	msgs, err := BuildExtractionMessages(ctx, rawText)
	if err != nil {
		return nil, err
	}

	content, err := e.cfg.generate(ctx, chat, types.StageExtract, msgs)
	if err != nil {
		return nil, err
	}

	var cv types.ExtractedCV
	if err := DecodeLLMObject(types.StageExtract, content, ExtractedCVSchema, &cv); err != nil {
		return nil, err
	}
	return &cv, nil
}

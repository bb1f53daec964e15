package parser

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"cv-tailor-go/internal/types"
)

// CVCurator 针对目标职位筛选、压缩并改写简历记录，产出 CuratedCV
type CVCurator struct {
	cfg stageConfig
}

// NewCVCurator 创建精选器
func NewCVCurator(opts ...StageOption) *CVCurator {
	return &CVCurator{cfg: newStageConfig(opts)}
}

// Curate 执行精选。userSummary 为空时由模型根据记录自行生成摘要
func (c *CVCurator) Curate(ctx context.Context, chat model.BaseChatModel, cv *types.ExtractedCV, targetJobTitle, userSummary string) (*types.CuratedCV, error) {
	if strings.TrimSpace(targetJobTitle) == "" {
		return nil, types.NewValidationError("目标职位不能为空")
	}

	msgs, err := BuildCurationMessages(ctx, cv, targetJobTitle, userSummary)
	if err != nil {
		return nil, err
	}

	content, err := c.cfg.generate(ctx, chat, types.StageCurate, msgs)
	if err != nil {
		return nil, err
	}

	var curated types.CuratedCV
	if err := DecodeLLMObject(types.StageCurate, content, CuratedCVSchema, &curated); err != nil {
		return nil, err
	}
	// 空类别不参与渲染
	curated.Skills = curated.Skills.NonEmpty()
	return &curated, nil
}

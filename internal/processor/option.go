package processor

import (
	"time"

	"cv-tailor-go/internal/document"
)

// PipelineOption CVPipeline 的选项函数
type PipelineOption func(*CVPipeline)

// WithExtractor 替换抽取阶段实现
func WithExtractor(e Extractor) PipelineOption {
	return func(p *CVPipeline) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithCurator 替换精选阶段实现
func WithCurator(c Curator) PipelineOption {
	return func(p *CVPipeline) {
		if c != nil {
			p.curator = c
		}
	}
}

// WithAssembler 替换文档组装实现
func WithAssembler(a Assembler) PipelineOption {
	return func(p *CVPipeline) {
		if a != nil {
			p.assembler = a
		}
	}
}

// WithLayout 设置打印版式
func WithLayout(layout document.LayoutOptions) PipelineOption {
	return func(p *CVPipeline) {
		p.layout = layout
	}
}

// WithRenderTimeout 设置单次渲染的超时时间
func WithRenderTimeout(d time.Duration) PipelineOption {
	return func(p *CVPipeline) {
		if d > 0 {
			p.renderTimeout = d
		}
	}
}

// WithRequestIDGenerator 替换请求ID生成方式
func WithRequestIDGenerator(gen func() string) PipelineOption {
	return func(p *CVPipeline) {
		if gen != nil {
			p.newRequestID = gen
		}
	}
}

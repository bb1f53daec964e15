package processor

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"cv-tailor-go/internal/document"
	"cv-tailor-go/internal/types"
)

//
// LLM 阶段接口
//

// Extractor 把原始资料文本抽取为结构化简历
type Extractor interface {
	Extract(ctx context.Context, chat model.BaseChatModel, rawText string) (*types.ExtractedCV, error)
}

// Curator 针对目标岗位精选简历内容
type Curator interface {
	Curate(ctx context.Context, chat model.BaseChatModel, cv *types.ExtractedCV, targetJobTitle, userSummary string) (*types.CuratedCV, error)
}

//
// 文档相关接口
//

// Assembler 把精选后的简历组装成 HTML
type Assembler interface {
	Assemble(cv *types.CuratedCV, photo types.PhotoPayload) (string, error)
}

// Renderer 提供渲染会话
type Renderer interface {
	NewSession(ctx context.Context) (document.Session, error)
}

//
// 模型相关接口
//

// ModelFactory 按模型ID和调用方凭证创建模型客户端
type ModelFactory interface {
	NewChatModel(ctx context.Context, modelID, apiKey string) (model.BaseChatModel, error)
}

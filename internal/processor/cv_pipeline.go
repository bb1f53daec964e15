package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cv-tailor-go/internal/document"
	"cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/parser"
	"cv-tailor-go/internal/tracing"
	"cv-tailor-go/internal/types"
)

var tracer = otel.Tracer("cv-tailor-go/processor")

// GenerateRequest 一次生成请求的全部输入，只在本次请求内有效
type GenerateRequest struct {
	RequestID string
	APIKey    string
	ModelID   string
	JobTitle  string
	Photo     types.PhotoPayload
	RawText   string
	Contact   types.ContactOverrides
	Summary   string
	Links     types.LinkOverrides
}

// Validate 检查必填项，在任何阶段开始前调用
func (r GenerateRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.APIKey) == "" {
		missing = append(missing, "apiKey")
	}
	if strings.TrimSpace(r.ModelID) == "" {
		missing = append(missing, "modelId")
	}
	if strings.TrimSpace(r.JobTitle) == "" {
		missing = append(missing, "jobTitle")
	}
	if r.Photo.IsEmpty() {
		missing = append(missing, "profilePhoto")
	}
	if len(missing) > 0 {
		return types.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// GeneratedDocument 生成结果
type GeneratedDocument struct {
	RequestID string
	Filename  string
	PDF       []byte
}

// CVPipeline 按顺序执行 抽取 → 合并 → 精选 → 叠加链接 → 组装 → 渲染。
// 不保存任何请求数据，可被多个请求并发使用
type CVPipeline struct {
	models    ModelFactory
	extractor Extractor
	curator   Curator
	assembler Assembler
	renderer  Renderer

	layout        document.LayoutOptions
	renderTimeout time.Duration
	newRequestID  func() string
}

// NewCVPipeline 创建流水线。未通过选项指定的阶段使用默认实现
func NewCVPipeline(models ModelFactory, renderer Renderer, opts ...PipelineOption) (*CVPipeline, error) {
	if models == nil {
		return nil, fmt.Errorf("ModelFactory 不能为空")
	}
	if renderer == nil {
		return nil, fmt.Errorf("Renderer 不能为空")
	}
	p := &CVPipeline{
		models:        models,
		extractor:     parser.NewCVExtractor(),
		curator:       parser.NewCVCurator(),
		assembler:     document.NewHTMLAssembler(),
		renderer:      renderer,
		layout:        document.LayoutOptions{PaperWidth: 8.27, PaperHeight: 11.69, PrintBackground: true},
		renderTimeout: 60 * time.Second,
		newRequestID:  newRequestID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// newRequestID 生成 UUIDv7，失败时退回 UUIDv4
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}

// Generate 执行完整流水线。任一阶段失败立即中止，不返回部分结果
func (p *CVPipeline) Generate(ctx context.Context, req GenerateRequest) (*GeneratedDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = p.newRequestID()
	}
	ctx, log := logger.WithRequestID(ctx, requestID)

	ctx, span := tracer.Start(ctx, "CVPipeline.Generate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
			attribute.String("llm.model_id", req.ModelID),
			attribute.String("cv.job_title", tracing.SafeAttributeValue("job_title", req.JobTitle, tracing.DefaultMaxLength)),
			attribute.Int("profile.raw_text_length", len(req.RawText)),
			attribute.String("profile.email", tracing.MaskPII(req.Contact.Email)),
		))
	defer span.End()

	start := time.Now()
	log.Info().Str("model_id", req.ModelID).Str("job_title", req.JobTitle).Int("raw_text_length", len(req.RawText)).Msg("开始生成简历")

	doc, err := p.run(ctx, req)
	if err != nil {
		err = attachRequestID(err, requestID)
		tracing.RecordError(span, err, tracing.ClassifyError(err))
		log.Error().Err(err).Str("stage", types.StageOf(err)).Str("kind", types.ErrorKind(err)).Dur("elapsed", time.Since(start)).Msg("生成简历失败")
		return nil, err
	}
	doc.RequestID = requestID

	span.SetAttributes(attribute.Int("pdf.size_bytes", len(doc.PDF)))
	span.SetStatus(codes.Ok, "生成成功")
	log.Info().Str("filename", doc.Filename).Int("pdf_size", len(doc.PDF)).Dur("elapsed", time.Since(start)).Msg("简历生成完成")
	return doc, nil
}

func (p *CVPipeline) run(ctx context.Context, req GenerateRequest) (*GeneratedDocument, error) {
	chat, err := p.models.NewChatModel(ctx, req.ModelID, req.APIKey)
	if err != nil {
		return nil, types.NewCollaboratorError(types.StageExtract, "无法创建模型客户端", err)
	}

	var extracted *types.ExtractedCV
	err = p.stage(ctx, types.StageExtract, func(ctx context.Context) error {
		var err error
		extracted, err = p.extractor.Extract(ctx, chat, req.RawText)
		return err
	})
	if err != nil {
		return nil, err
	}

	var merged *types.ExtractedCV
	err = p.stage(ctx, types.StageMerge, func(ctx context.Context) error {
		merged = MergeContactOverrides(extracted, req.Contact)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var curated *types.CuratedCV
	err = p.stage(ctx, types.StageCurate, func(ctx context.Context) error {
		var err error
		curated, err = p.curator.Curate(ctx, chat, merged, req.JobTitle, req.Summary)
		return err
	})
	if err != nil {
		return nil, err
	}

	var final *types.CuratedCV
	err = p.stage(ctx, types.StageOverlay, func(ctx context.Context) error {
		final = OverlayLinks(curated, req.Links)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var html string
	err = p.stage(ctx, types.StageAssemble, func(ctx context.Context) error {
		var err error
		html, err = p.assembler.Assemble(final, req.Photo)
		if err != nil {
			return fmt.Errorf("组装文档失败: %w", err)
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int("html.length", len(html)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var pdf []byte
	err = p.stage(ctx, types.StageRender, func(ctx context.Context) error {
		var err error
		pdf, err = p.render(ctx, html)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &GeneratedDocument{
		Filename: document.FileName(final.Name),
		PDF:      pdf,
	}, nil
}

// render 打开一个会话打印 PDF，会话在所有路径上都会关闭
func (p *CVPipeline) render(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.renderTimeout)
	defer cancel()

	session, err := p.renderer.NewSession(ctx)
	if err != nil {
		return nil, asCollaboratorError(types.StageRender, "无法获取渲染会话", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Ctx(ctx).Warn().Err(cerr).Msg("关闭渲染会话失败")
		}
	}()

	pdf, err := session.PrintPDF(ctx, html, p.layout)
	if err != nil {
		return nil, asCollaboratorError(types.StageRender, "渲染PDF失败", err)
	}
	return pdf, nil
}

// stage 为单个阶段创建子 span 并记录耗时
func (p *CVPipeline) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "cv."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int64("stage.duration_ms", elapsed.Milliseconds()))

	if err != nil {
		tracing.RecordError(span, err, tracing.ClassifyError(err))
		return err
	}
	span.SetStatus(codes.Ok, "")
	logger.Ctx(ctx).Debug().Str("stage", name).Dur("elapsed", elapsed).Msg("阶段完成")
	return nil
}

func asCollaboratorError(stage, detail string, err error) error {
	var se *types.StageError
	if errors.As(err, &se) {
		return err
	}
	return types.NewCollaboratorError(stage, detail, err)
}

func attachRequestID(err error, requestID string) error {
	var se *types.StageError
	if errors.As(err, &se) && se.RequestID == "" {
		return se.WithRequestID(requestID)
	}
	return err
}

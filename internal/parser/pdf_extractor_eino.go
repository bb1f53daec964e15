package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"

	"cv-tailor-go/internal/logger"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 从上传的资料 PDF 中提取纯文本，
// 供没有 OCR 能力的客户端获得 rawText
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithParseTimeout 设置单次解析的超时时间
func WithParseTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.timeout = d
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 默认配置为不按页面分割，以获取整个文档的连续文本
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		timeout: 30 * time.Second,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractTextFromReader 从 io.Reader 中提取文本，uri 仅用于日志和元数据
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	log := logger.Ctx(ctx)
	startTime := time.Now()

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(map[string]any{"extraction_time": startTime.Format(time.RFC3339)}),
	)
	duration := time.Since(startTime)
	if err != nil {
		log.Warn().Err(err).Str("uri", uri).Dur("duration", duration).Msg("PDF解析失败")
		return "", fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	// 正常情况下只有一个文档，多个时按顺序拼接
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if c := strings.TrimSpace(doc.Content); c != "" {
			parts = append(parts, c)
		}
	}
	text := strings.Join(parts, "\n\n")

	log.Info().Str("uri", uri).Int("documents", len(docs)).Int("text_length", len(text)).
		Dur("duration", duration).Msg("PDF提取完成")
	return text, nil
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("PDF内容为空")
	}
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri)
}

package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cv-tailor-go/internal/types"
)

// ErrorType 定义错误类型，便于分类和过滤
type ErrorType string

const (
	// ErrorTypeHTTP HTTP错误
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeRedis Redis错误
	ErrorTypeRedis ErrorType = "redis"
	// ErrorTypeValidation 验证错误
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeSchema 模型输出结构错误
	ErrorTypeSchema ErrorType = "schema_violation"
	// ErrorTypeLLM 文本生成服务错误
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeRenderer 渲染服务错误
	ErrorTypeRenderer ErrorType = "renderer"
	// ErrorTypeInternal 内部错误
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeTimeout 超时错误
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypePermission 权限错误
	ErrorTypePermission ErrorType = "permission"
)

// ClassifyError 根据错误链推断错误类型
func ClassifyError(err error) ErrorType {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, types.ErrValidation):
		return ErrorTypeValidation
	case errors.Is(err, types.ErrSchemaViolation):
		return ErrorTypeSchema
	case errors.Is(err, types.ErrRateLimitBackend):
		return ErrorTypeRedis
	case errors.Is(err, types.ErrCollaborator):
		if types.StageOf(err) == types.StageRender {
			return ErrorTypeRenderer
		}
		return ErrorTypeLLM
	default:
		return ErrorTypeInternal
	}
}

// RecordError 记录错误，添加统一的错误类型和详情
func RecordError(span trace.Span, err error, errorType ErrorType) {
	RecordErrorWithInfo(span, err, errorType)
}

// RecordErrorWithInfo 记录错误并添加额外信息
func RecordErrorWithInfo(span trace.Span, err error, errorType ErrorType, attributes ...attribute.KeyValue) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", TruncateString(err.Error(), DefaultMaxLength)),
	)
	if len(attributes) > 0 {
		span.SetAttributes(attributes...)
	}
	span.SetStatus(codes.Error, err.Error())
}

// RecordHTTPError 专门记录HTTP错误
func RecordHTTPError(span trace.Span, err error, statusCode int) {
	if span == nil || err == nil {
		return
	}

	var errorCategory string
	switch {
	case statusCode >= 400 && statusCode < 500:
		errorCategory = "client_error"
	case statusCode >= 500:
		errorCategory = "server_error"
	default:
		errorCategory = "unknown"
	}

	RecordErrorWithInfo(span, err, ErrorTypeHTTP,
		attribute.Int("http.status_code", statusCode),
		attribute.String("error.category", errorCategory),
		attribute.String("error.kind", types.ErrorKind(err)),
	)
}

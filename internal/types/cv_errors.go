package types

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrValidation 请求不合法，任何阶段开始之前返回
	ErrValidation = errors.New("validation error")
	// ErrSchemaViolation 模型输出不是符合约定结构的 JSON 对象
	ErrSchemaViolation = errors.New("schema violation")
	// ErrCollaborator 外部协作方（LLM、渲染器）调用失败
	ErrCollaborator = errors.New("collaborator failure")
	// ErrRateLimitBackend 共享限流后端（Redis）不可用
	ErrRateLimitBackend = errors.New("rate limit backend failure")
)

// 流水线阶段名称
const (
	StageValidate = "validate"
	StageExtract  = "extract"
	StageMerge    = "merge"
	StageCurate   = "curate"
	StageOverlay  = "overlay"
	StageAssemble = "assemble"
	StageRender   = "render"
)

// StageError 包含阶段信息的自定义错误
type StageError struct {
	RequestID string
	Stage     string
	BaseErr   error
	Detail    string
	Cause     error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("%s (stage:%s", e.BaseErr, e.Stage)
	if e.RequestID != "" {
		msg += ", request:" + e.RequestID
	}
	msg += ")"
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap 返回底层原因，便于 errors.Is(err, context.Canceled) 之类的判断
func (e *StageError) Unwrap() error {
	return e.Cause
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *StageError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// WithRequestID 返回带请求ID的副本
func (e *StageError) WithRequestID(id string) *StageError {
	cp := *e
	cp.RequestID = id
	return &cp
}

// 错误构造函数
func NewValidationError(detail string) error {
	return &StageError{
		Stage:   StageValidate,
		BaseErr: ErrValidation,
		Detail:  detail,
	}
}

func NewSchemaViolation(stage, detail string, cause error) error {
	return &StageError{
		Stage:   stage,
		BaseErr: ErrSchemaViolation,
		Detail:  detail,
		Cause:   cause,
	}
}

func NewCollaboratorError(stage, detail string, cause error) error {
	return &StageError{
		Stage:   stage,
		BaseErr: ErrCollaborator,
		Detail:  detail,
		Cause:   cause,
	}
}

// ErrorKind 返回对外暴露的错误类型标识
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrCollaborator):
		return "collaborator_failure"
	default:
		return "internal_error"
	}
}

// StageOf 返回错误所属阶段，非 StageError 时返回空串
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

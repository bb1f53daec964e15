package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"

	"cv-tailor-go/internal/constants"
	"cv-tailor-go/internal/document"
	"cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/processor"
	"cv-tailor-go/internal/tracing"
	"cv-tailor-go/internal/types"
)

// CVGenerator 生成简历 PDF
type CVGenerator interface {
	Generate(ctx context.Context, req processor.GenerateRequest) (*processor.GeneratedDocument, error)
}

// PersonalDetails 用户手动填写的个人信息
type PersonalDetails struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

// GenerateCVRequest POST /api/v1/cv/generate 的请求体
type GenerateCVRequest struct {
	APIKey          string              `json:"apiKey"`
	ModelID         string              `json:"modelId"`
	JobTitle        string              `json:"jobTitle"`
	ProfilePhoto    *types.PhotoPayload `json:"profilePhoto"`
	RawText         string              `json:"rawText"`
	PersonalDetails PersonalDetails     `json:"personalDetails"`
	LinkedInURL     string              `json:"linkedinUrl"`
	GitHubURL       string              `json:"githubUrl"`
	PortfolioURL    string              `json:"portfolioUrl"`
}

// toGenerateRequest 转换为流水线输入
func (r GenerateCVRequest) toGenerateRequest(requestID string) processor.GenerateRequest {
	var photo types.PhotoPayload
	if r.ProfilePhoto != nil {
		photo = *r.ProfilePhoto
	}
	return processor.GenerateRequest{
		RequestID: requestID,
		APIKey:    r.APIKey,
		ModelID:   r.ModelID,
		JobTitle:  r.JobTitle,
		Photo:     photo,
		RawText:   r.RawText,
		Contact: types.ContactOverrides{
			Email:    r.PersonalDetails.Email,
			Phone:    r.PersonalDetails.Phone,
			Location: r.PersonalDetails.Location,
		},
		Summary: r.PersonalDetails.Summary,
		Links: types.LinkOverrides{
			LinkedInURL:  r.LinkedInURL,
			GitHubURL:    r.GitHubURL,
			PortfolioURL: r.PortfolioURL,
		},
	}
}

// CVHandler 处理简历生成请求
type CVHandler struct {
	generator CVGenerator
}

// NewCVHandler 创建一个新的 CVHandler 实例
func NewCVHandler(generator CVGenerator) *CVHandler {
	return &CVHandler{generator: generator}
}

// HandleGenerate 生成简历并以 PDF 附件返回
// POST /api/v1/cv/generate
func (h *CVHandler) HandleGenerate(ctx context.Context, c *app.RequestContext) {
	if !isJSON(c) {
		writeError(ctx, c, types.NewValidationError("Content-Type must be application/json"))
		return
	}

	var body GenerateCVRequest
	if err := json.Unmarshal(c.Request.Body(), &body); err != nil {
		writeError(ctx, c, types.NewValidationError("invalid JSON body: "+err.Error()))
		return
	}

	requestID := string(c.GetHeader(constants.HeaderRequestID))
	doc, err := h.generator.Generate(ctx, body.toGenerateRequest(requestID))
	if err != nil {
		writeError(ctx, c, err)
		return
	}

	c.Header(constants.HeaderRequestID, doc.RequestID)
	c.Header("Content-Disposition", document.ContentDisposition(doc.Filename))
	c.Data(consts.StatusOK, constants.ContentTypePDF, doc.PDF)
}

func isJSON(c *app.RequestContext) bool {
	mediaType, _, err := mime.ParseMediaType(string(c.ContentType()))
	return err == nil && mediaType == consts.MIMEApplicationJSON
}

// statusFor 校验错误返回 400，其余一律 500
func statusFor(err error) int {
	if errors.Is(err, types.ErrValidation) {
		return consts.StatusBadRequest
	}
	return consts.StatusInternalServerError
}

// writeError 以 {"error","type"} 格式返回错误并记录到日志和当前 span
func writeError(ctx context.Context, c *app.RequestContext, err error) {
	status := statusFor(err)
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)

	event := logger.Ctx(ctx).Warn()
	if status >= consts.StatusInternalServerError {
		event = logger.Ctx(ctx).Error()
	}
	event.Err(err).Int("status", status).Str("path", string(c.Path())).Msg("请求处理失败")

	c.JSON(status, utils.H{
		"error": err.Error(),
		"type":  types.ErrorKind(err),
	})
}

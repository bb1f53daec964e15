package handler

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/types"
)

// ProfileTextExtractor 从 PDF 中提取纯文本
type ProfileTextExtractor interface {
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error)
}

// ProfileHandler 把上传的资料 PDF 转为纯文本，不保存文件
type ProfileHandler struct {
	extractor ProfileTextExtractor
}

// NewProfileHandler 创建一个新的 ProfileHandler 实例
func NewProfileHandler(extractor ProfileTextExtractor) *ProfileHandler {
	return &ProfileHandler{extractor: extractor}
}

// HandleExtractText 提取上传 PDF 的文本
// POST /api/v1/profile/text
func (h *ProfileHandler) HandleExtractText(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(ctx, c, types.NewValidationError("multipart field \"file\" is required"))
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != "" && ext != ".pdf" {
		writeError(ctx, c, types.NewValidationError("only PDF files are supported"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(ctx, c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(ctx, c, err)
		return
	}

	text, err := h.extractor.ExtractTextFromBytes(ctx, data, fileHeader.Filename)
	if err != nil {
		writeError(ctx, c, types.NewValidationError("could not read PDF: "+err.Error()))
		return
	}

	logger.Ctx(ctx).Info().Int("file_size", len(data)).Int("text_length", len(text)).Msg("资料文本提取完成")
	c.JSON(consts.StatusOK, utils.H{"text": text})
}

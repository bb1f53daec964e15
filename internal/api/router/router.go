package router

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
	"go.opentelemetry.io/otel/trace"

	"cv-tailor-go/internal/api/handler"
	"cv-tailor-go/internal/constants"
	"cv-tailor-go/internal/tracing"
)

// errInvalidServiceKey 服务密钥不匹配
var errInvalidServiceKey = errors.New("invalid service key")

// RegisterRoutes 注册 API 路由。serviceKeys 非空时业务路由需要 X-Service-Key
func RegisterRoutes(h *server.Hertz, cvHandler *handler.CVHandler, profileHandler *handler.ProfileHandler, serviceKeys []string) {
	api := h.Group(constants.APIPrefix)

	// 健康检查不鉴权
	api.GET(constants.RouteHealth, func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	protected := api.Group("")
	if len(serviceKeys) > 0 {
		protected.Use(ServiceKeyAuth(serviceKeys))
	}
	protected.POST(constants.RouteCVGenerate, cvHandler.HandleGenerate)
	protected.POST(constants.RouteProfileText, profileHandler.HandleExtractText)
}

// ServiceKeyAuth 校验 X-Service-Key 头
func ServiceKeyAuth(keys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+constants.HeaderServiceKey, ""),
		keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, errInvalidServiceKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypePermission)
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{
				"error": "missing or invalid " + constants.HeaderServiceKey,
				"type":  "unauthorized",
			})
		}),
	)
}

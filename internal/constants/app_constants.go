package constants

const (
	// API 路由
	APIPrefix        = "/api/v1"
	RouteHealth      = "/health"
	RouteCVGenerate  = "/cv/generate"
	RouteProfileText = "/profile/text"
	ServiceName      = "cv-tailor-go"

	// HTTP 头
	HeaderRequestID  = "X-Request-ID"
	HeaderServiceKey = "X-Service-Key"

	ContentTypePDF = "application/pdf"
)

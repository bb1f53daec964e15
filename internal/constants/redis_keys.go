package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: {app}:{module}:{entity}:...
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "cvtailor"

	// RateLimitModulePrefix 限流模块
	RateLimitModulePrefix = "ratelimit"

	// DefaultRateLimitKeyPrefix 模型调用计数 key 的默认前缀 (STRING, INCR)
	// 完整格式: cvtailor:ratelimit:{modelID}:{windowStartUnix}
	DefaultRateLimitKeyPrefix = AppPrefix + ":" + RateLimitModulePrefix + ":"
)

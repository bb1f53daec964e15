package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 全局日志实例
	Logger = log.Logger
)

// Config 日志配置
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否输出调用位置
}

// Init 初始化全局日志，并把 Hertz 的 hlog 桥接到同一个 zerolog 实例
func Init(config Config) {
	InitWithWriter(config, os.Stdout)
}

// InitWithWriter 与 Init 相同，但输出到指定的 writer，测试中使用
func InitWithWriter(config Config, out io.Writer) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	output := out
	if config.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: config.TimeFormat,
		}
	}

	ctxLogger := zerolog.New(output).Level(level).With().Timestamp()
	if config.ReportCaller {
		ctxLogger = ctxLogger.Caller()
	}

	Logger = ctxLogger.Logger()
	log.Logger = Logger
	// 让 Ctx 在没有注入 logger 的 context 上也能回退到全局实例
	zerolog.DefaultContextLogger = &Logger

	hlog.SetLogger(hertzadapter.From(Logger))
	hlog.SetLevel(hertzLevel(level))
}

func hertzLevel(level zerolog.Level) hlog.Level {
	switch level {
	case zerolog.TraceLevel:
		return hlog.LevelTrace
	case zerolog.DebugLevel:
		return hlog.LevelDebug
	case zerolog.WarnLevel:
		return hlog.LevelWarn
	case zerolog.ErrorLevel:
		return hlog.LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}

// Debug 开始一条调试级别的日志事件
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别的日志事件
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别的日志事件
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别的日志事件
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 开始一条致命错误级别的日志事件，记录后程序将退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中获取日志记录器，没有时返回全局实例
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &Logger
}

// WithContext 将全局日志记录器添加到上下文中
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}

// WithRequestID 返回携带 request_id 字段的 logger 及注入了该 logger 的上下文
func WithRequestID(ctx context.Context, requestID string) (context.Context, *zerolog.Logger) {
	l := Ctx(ctx).With().Str("request_id", requestID).Logger()
	return l.WithContext(ctx), &l
}

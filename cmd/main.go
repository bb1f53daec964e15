package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"cv-tailor-go/internal/agent"
	"cv-tailor-go/internal/api/handler"
	"cv-tailor-go/internal/api/router"
	"cv-tailor-go/internal/config"
	"cv-tailor-go/internal/document"
	appCoreLogger "cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/parser"
	"cv-tailor-go/internal/processor"
	"cv-tailor-go/internal/storage"
	"cv-tailor-go/internal/tracing"
	"cv-tailor-go/pkg/ratelimit"
)

var version = "1.0.0" //nolint:gochecknoglobals

func main() {
	var (
		configPath   string
		samplePath   string
		printVersion bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVar(&samplePath, "write-sample-config", "", "Write a sample config file to the given path and exit")
	pflag.BoolVarP(&printVersion, "version", "v", false, "Print version and exit")
	pflag.Parse()

	if printVersion {
		fmt.Println(version)
		return
	}
	if samplePath != "" {
		if err := config.CreateSampleConfig(samplePath); err != nil {
			fmt.Fprintf(os.Stderr, "创建示例配置失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("示例配置已写入 %s\n", samplePath)
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.Infof("配置加载成功, version=%s", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化限流器失败: %v", err)
	}
	glog.Infof("限流器初始化成功, backend=%s", cfg.RateLimit.Backend)

	renderer, err := document.NewChromeRenderer(ctx, cfg.Renderer)
	if err != nil {
		glog.Fatalf("初始化PDF渲染器失败: %v", err)
	}
	glog.Infof("PDF渲染器初始化成功, max_sessions=%d", cfg.Renderer.MaxSessions)

	stageOpts := []parser.StageOption{
		parser.WithCallTimeout(config.GetDuration(cfg.LLM.RequestTimeout, 90*time.Second)),
		parser.WithMaxOutputTokens(cfg.LLM.MaxOutputTokens),
		parser.WithTemperature(cfg.LLM.Temperature),
	}
	pipeline, err := processor.NewCVPipeline(
		agent.NewModelProvider(cfg.LLM, limiter),
		renderer,
		processor.WithExtractor(parser.NewCVExtractor(stageOpts...)),
		processor.WithCurator(parser.NewCVCurator(stageOpts...)),
		processor.WithLayout(document.LayoutFromConfig(cfg.Renderer)),
		processor.WithRenderTimeout(config.GetDuration(cfg.Renderer.Timeout, 60*time.Second)),
	)
	if err != nil {
		glog.Fatalf("初始化简历生成流水线失败: %v", err)
	}

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		glog.Fatalf("初始化PDF文本提取器失败: %v", err)
	}

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodyBytes),
		server.WithExitWaitTime(config.GetDuration(cfg.Server.ExitWaitTime, 10*time.Second)),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h,
		handler.NewCVHandler(pipeline),
		handler.NewProfileHandler(pdfExtractor),
		cfg.Server.ServiceAPIKeys,
	)
	if len(cfg.Server.ServiceAPIKeys) == 0 {
		glog.Warn("未配置 server.service_api_keys，接口不做服务鉴权")
	}
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ExitWaitTime, 10*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}

	renderer.Close()
	if err := closeLimiter(); err != nil {
		glog.Warnf("关闭限流器失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Warnf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// newLimiter 按配置选择限流后端。redis 后端在多实例部署时共享计数
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func() error, error) {
	switch cfg.RateLimit.Backend {
	case "redis":
		r, err := storage.NewRedisAdapter(ctx, &cfg.RateLimit.Redis)
		if err != nil {
			return nil, nil, err
		}
		return ratelimit.NewRedisLimiter(r.Client, cfg.RateLimit.KeyPrefix, cfg.LLM.QPMForModel), r.Close, nil
	default:
		return ratelimit.NewLocalLimiter(cfg.LLM.QPMForModel), func() error { return nil }, nil
	}
}

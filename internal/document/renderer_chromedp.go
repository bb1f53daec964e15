package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"

	"cv-tailor-go/internal/config"
	"cv-tailor-go/internal/logger"
	"cv-tailor-go/internal/types"
)

// A4 纸张尺寸，单位英寸
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// imagesLoadedJS 等待页面内所有图片加载完成
const imagesLoadedJS = `Array.from(document.images).every(img => img.complete)`

// LayoutOptions 打印版式，尺寸单位为英寸
type LayoutOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginRight     float64
	MarginBottom    float64
	MarginLeft      float64
	PrintBackground bool
}

// LayoutFromConfig 按配置生成 A4 版式
func LayoutFromConfig(cfg config.RendererConfig) LayoutOptions {
	return LayoutOptions{
		PaperWidth:      a4WidthInches,
		PaperHeight:     a4HeightInches,
		MarginTop:       cfg.Margins.Top,
		MarginRight:     cfg.Margins.Right,
		MarginBottom:    cfg.Margins.Bottom,
		MarginLeft:      cfg.Margins.Left,
		PrintBackground: true,
	}
}

// Session 一次渲染占用的浏览器会话，用完必须 Close
type Session interface {
	PrintPDF(ctx context.Context, html string, layout LayoutOptions) ([]byte, error)
	Close() error
}

// ChromeRenderer 通过 chromedp 驱动 headless Chrome 打印 PDF。
// 同时打开的会话数受 semaphore 限制
type ChromeRenderer struct {
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	sessions *semaphore.Weighted
	timeout  time.Duration

	mu      sync.Mutex
	started bool
}

// NewChromeRenderer 创建渲染器。配置了 browser_ws_url 时连接远程浏览器，
// 否则在本机启动 Chrome。浏览器在第一次渲染时才真正启动
func NewChromeRenderer(ctx context.Context, cfg config.RendererConfig) (*ChromeRenderer, error) {
	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		return nil, fmt.Errorf("renderer.max_sessions 必须大于 0")
	}

	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if cfg.BrowserWSURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.BrowserWSURL)
		logger.Info().Str("browser_ws_url", cfg.BrowserWSURL).Msg("[Renderer] 使用远程浏览器")
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.DisableGPU,
			chromedp.NoSandbox,
			chromedp.Flag("font-render-hinting", "none"),
		)
		if cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
		logger.Info().Str("exec_path", cfg.ExecPath).Msg("[Renderer] 使用本地 headless Chrome")
	}

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	return &ChromeRenderer{
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		sessions:      semaphore.NewWeighted(int64(maxSessions)),
		timeout:       config.GetDuration(cfg.Timeout, 60*time.Second),
	}, nil
}

// ensureBrowser 启动浏览器，失败后下次调用会重试
func (r *ChromeRenderer) ensureBrowser() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	if err := chromedp.Run(r.browserCtx); err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}
	r.started = true
	return nil
}

// NewSession 占用一个会话槽位并打开新标签页。槽位已满时阻塞直到 ctx 结束
func (r *ChromeRenderer) NewSession(ctx context.Context) (Session, error) {
	if err := r.sessions.Acquire(ctx, 1); err != nil {
		return nil, types.NewCollaboratorError(types.StageRender, "等待渲染会话超时", err)
	}
	if err := r.ensureBrowser(); err != nil {
		r.sessions.Release(1)
		return nil, types.NewCollaboratorError(types.StageRender, "浏览器不可用", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	return &chromeSession{
		tabCtx:    tabCtx,
		cancelTab: cancelTab,
		timeout:   r.timeout,
		release:   func() { r.sessions.Release(1) },
	}, nil
}

// Close 关闭浏览器和分配器
func (r *ChromeRenderer) Close() {
	r.cancelBrowser()
	r.cancelAlloc()
}

type chromeSession struct {
	tabCtx    context.Context
	cancelTab context.CancelFunc
	timeout   time.Duration
	release   func()
	closeOnce sync.Once
}

// PrintPDF 把 HTML 写入空白页并打印为 PDF
func (s *chromeSession) PrintPDF(ctx context.Context, html string, layout LayoutOptions) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(s.tabCtx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		pdf    []byte
		loaded bool
	)
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Poll(imagesLoadedJS, &loaded, chromedp.WithPollingTimeout(10*time.Second)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(layout.PaperWidth).
				WithPaperHeight(layout.PaperHeight).
				WithMarginTop(layout.MarginTop).
				WithMarginRight(layout.MarginRight).
				WithMarginBottom(layout.MarginBottom).
				WithMarginLeft(layout.MarginLeft).
				WithPrintBackground(layout.PrintBackground).
				WithPreferCSSPageSize(false).
				Do(ctx)
			pdf = buf
			return err
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, types.NewCollaboratorError(types.StageRender, "打印PDF失败", err)
	}
	if len(pdf) == 0 {
		return nil, types.NewCollaboratorError(types.StageRender, "渲染器返回空文档", errors.New("empty pdf"))
	}
	return pdf, nil
}

// Close 关闭标签页并归还槽位，可重复调用
func (s *chromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancelTab()
		s.release()
	})
	return nil
}

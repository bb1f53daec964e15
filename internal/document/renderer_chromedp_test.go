package document

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tailor-go/internal/config"
)

func TestLayoutFromConfig(t *testing.T) {
	layout := LayoutFromConfig(config.RendererConfig{
		Margins: config.MarginsConfig{Top: 0.5, Right: 0.4, Bottom: 0.5, Left: 0.4},
	})
	assert.Equal(t, 8.27, layout.PaperWidth)
	assert.Equal(t, 11.69, layout.PaperHeight)
	assert.Equal(t, 0.5, layout.MarginTop)
	assert.Equal(t, 0.4, layout.MarginLeft)
	assert.True(t, layout.PrintBackground)
}

func TestNewChromeRenderer_RequiresSessions(t *testing.T) {
	_, err := NewChromeRenderer(context.Background(), config.RendererConfig{MaxSessions: 0})
	assert.Error(t, err)
}

func TestChromeSession_CloseReleasesOnce(t *testing.T) {
	released := 0
	cancelled := 0
	s := &chromeSession{
		cancelTab: func() { cancelled++ },
		release:   func() { released++ },
	}
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, released)
	assert.Equal(t, 1, cancelled)
}

func TestChromeRenderer_SessionSlots(t *testing.T) {
	r, err := NewChromeRenderer(context.Background(), config.RendererConfig{MaxSessions: 1, Timeout: "5s"})
	require.NoError(t, err)
	defer r.Close()

	// 占满唯一的槽位后，NewSession 应在 ctx 超时后返回
	require.True(t, r.sessions.TryAcquire(1))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = r.NewSession(ctx)
	require.Error(t, err)
	r.sessions.Release(1)
}

// 需要本机 Chrome，设置 CVT_TEST_CHROME=1 时运行
func TestChromeRenderer_PrintPDF(t *testing.T) {
	if os.Getenv("CVT_TEST_CHROME") == "" {
		t.Skip("未设置 CVT_TEST_CHROME，跳过浏览器集成测试")
	}
	cfg := config.RendererConfig{
		MaxSessions:  1,
		Timeout:      "30s",
		ExecPath:     os.Getenv("CVT_TEST_CHROME_PATH"),
		BrowserWSURL: os.Getenv("CVT_TEST_BROWSER_WS_URL"),
		Margins:      config.MarginsConfig{Top: 0.4, Right: 0.4, Bottom: 0.4, Left: 0.4},
	}
	r, err := NewChromeRenderer(context.Background(), cfg)
	require.NoError(t, err)
	defer r.Close()

	html, err := NewHTMLAssembler().Assemble(fullCV(), testPhoto)
	require.NoError(t, err)

	session, err := r.NewSession(context.Background())
	require.NoError(t, err)
	defer session.Close()

	pdf, err := session.PrintPDF(context.Background(), html, LayoutFromConfig(cfg))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"), "输出应为 PDF")
}

// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/internal/config"
)

// startupTimeout bounds the liveness check run right after launching or attaching.
const startupTimeout = 30 * time.Second

// Manager owns the browser process, or the connection to an existing one.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	// allocatorCtx manages the browser process. Tab contexts derive from it.
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	remote          bool
}

// NewManager launches Chromium, or attaches to cfg.RemoteURL when it is set.
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
		remote: cfg.RemoteURL != "",
	}

	if m.remote {
		m.logger.Info("Attaching to running browser...", zap.String("remote_url", cfg.RemoteURL))
		m.allocatorCtx, m.allocatorCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		m.logger.Info("Initializing browser allocator...", zap.Bool("headless", cfg.Headless))
		m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, AllocatorOptions(cfg)...)
	}

	if err := m.verify(); err != nil {
		m.allocatorCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("Browser is responsive.")
	return m, nil
}

// verify runs a trivial task in a throwaway tab.
func (m *Manager) verify() error {
	testCtx, cancelTimeout := context.WithTimeout(m.allocatorCtx, startupTimeout)
	defer cancelTimeout()
	testCtx, cancelTab := chromedp.NewContext(testCtx)
	defer cancelTab()

	if m.remote {
		// Do not navigate a tab we might not own; any round trip will do.
		var ua string
		return chromedp.Run(testCtx, chromedp.Evaluate(`navigator.userAgent`, &ua))
	}
	return chromedp.Run(testCtx, chromedp.Navigate("about:blank"))
}

// NewSession opens a tab and returns a Session bound to it.
func (m *Manager) NewSession(ctx context.Context, game config.GameConfig) (*Session, error) {
	opts := []chromedp.ContextOption{}
	if m.cfg.Debug {
		opts = append(opts, chromedp.WithDebugf(m.logger.Sugar().Debugf))
	}
	tabCtx, cancel := chromedp.NewContext(m.allocatorCtx, opts...)

	// The first Run allocates the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return newSession(tabCtx, cancel, game, m.logger), nil
}

// Shutdown terminates the browser process, or drops the remote connection.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.allocatorCancel == nil {
		return nil
	}
	m.logger.Info("Shutting down browser...")
	m.allocatorCancel()

	select {
	case <-m.allocatorCtx.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("browser shutdown: %w", ctx.Err())
	}
}

// AllocatorFlags computes the command line flags for a launched browser.
func AllocatorFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":               cfg.Headless,
		"disable-gpu":            cfg.Headless,
		"disable-extensions":     true,
		"enable-automation":      false,
		"mute-audio":             true,
		"disable-blink-features": "AutomationControlled",

		// The game keeps running while the window is in the background.
		"disable-background-timer-throttling":    true,
		"disable-renderer-backgrounding":         true,
		"disable-backgrounding-occluded-windows": true,
	}

	if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
		flags["window-size"] = fmt.Sprintf("%d,%d", w, h)
	}

	if runtime.GOOS == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
	}

	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}
	return flags
}

// AllocatorOptions converts the browser config into chromedp exec allocator options.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	var opts []chromedp.ExecAllocatorOption
	for _, opt := range chromedp.DefaultExecAllocatorOptions[:] {
		opts = append(opts, opt)
	}

	flags := AllocatorFlags(cfg)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	return opts
}

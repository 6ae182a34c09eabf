// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/internal/actuator"
	"github.com/xkilldash9x/snakepilot/internal/config"
)

// closeTimeout bounds tab teardown.
const closeTimeout = 5 * time.Second

// Session is one browser tab hosting the game.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	game   config.GameConfig

	closeOnce sync.Once
}

func newSession(tabCtx context.Context, cancel context.CancelFunc, game config.GameConfig, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:     id,
		ctx:    tabCtx,
		cancel: cancel,
		logger: logger.Named("session").With(zap.String("session_id", id)),
		game:   game,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Context returns the tab context. Actions run against it reach this tab.
func (s *Session) Context() context.Context {
	return s.ctx
}

// RunActions runs actions against the tab, canceled when either ctx or the tab ends.
func (s *Session) RunActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.game.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.game.NavigationTimeout)
		defer cancel()
	}

	s.logger.Info("Navigating to game.", zap.String("url", url))
	if err := s.RunActions(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Host returns the game adapter bound to this tab.
func (s *Session) Host() *HostReader {
	return NewHostReader(s.RunActions, s.game, s.logger)
}

// Executor returns a CDP input executor bound to this tab.
func (s *Session) Executor() *actuator.CDPExecutor {
	return actuator.NewCDPExecutor(s.logger).WithRunner(s.RunActions)
}

// WaitReady blocks until selector is present or timeout elapses. A zero timeout waits on ctx alone.
func (s *Session) WaitReady(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.RunActions(ctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return nil
}

// Close closes the tab. It is safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		// The caller's context may already be done during shutdown.
		closeCtx, cancel := context.WithTimeout(Detach(ctx), closeTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			s.cancel()
			close(done)
		}()
		select {
		case <-done:
			s.logger.Debug("Tab closed.")
		case <-closeCtx.Done():
			err = fmt.Errorf("timed out closing tab: %w", closeCtx.Err())
		}
	})
	return err
}

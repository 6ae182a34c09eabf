// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/actuator"
	"github.com/xkilldash9x/snakepilot/internal/agent"
	"github.com/xkilldash9x/snakepilot/internal/browser"
	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/decision"
	"github.com/xkilldash9x/snakepilot/internal/game"
	"github.com/xkilldash9x/snakepilot/internal/observability"
	"github.com/xkilldash9x/snakepilot/internal/refserver"
)

type runOptions struct {
	headless    bool
	remoteURL   string
	decisionURL string
	payload     string
	rate        float64
	serve       bool
}

// apply overrides configuration with the flags the user set, then revalidates.
func (o *runOptions) apply(changed func(name string) bool, cfg *config.Config) error {
	if changed("headless") {
		cfg.SetBrowserHeadless(o.headless)
	}
	if changed("remote-url") {
		cfg.SetBrowserRemoteURL(o.remoteURL)
	}
	if changed("decision-url") {
		cfg.SetDecisionURL(o.decisionURL)
	}
	if changed("rate") {
		cfg.SetAgentSampleRate(o.rate)
	}
	if changed("payload") {
		cfg.AgentCfg.Payload = o.payload
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the game in a browser and play it",
		Long: `Launches Chromium (or attaches to an existing browser), opens the game, clicks play and
then samples the game at a fixed rate, forwarding every sample to the decision service and
applying the returned steering action.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if err := opts.apply(cmd.Flags().Changed, cfg); err != nil {
				return err
			}
			return runPilot(cmd.Context(), cfg, opts.serve, observability.Component("pilot"))
		},
	}

	cmd.Flags().BoolVar(&opts.headless, "headless", false, "run the browser without a window")
	cmd.Flags().StringVar(&opts.remoteURL, "remote-url", "", "attach to a running browser's DevTools endpoint")
	cmd.Flags().StringVar(&opts.decisionURL, "decision-url", "", "decision service endpoint")
	cmd.Flags().StringVar(&opts.payload, "payload", "", "observation payload: signals or pixels")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "sampling rate in Hz")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "also run the reference decision service in-process")
	return cmd
}

// runPilot plays the game until ctx is canceled, optionally next to the reference service.
func runPilot(ctx context.Context, cfg *config.Config, serve bool, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	if serve {
		if !cfg.Server().Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := refserver.New(cfg.Server(), logger)
		g.Go(func() error { return srv.Run(gctx) })
	}
	g.Go(func() error { return pilot(gctx, cfg, logger) })

	return g.Wait()
}

func pilot(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	recorder, closeRecorder := openRecorder(ctx, cfg.Database(), logger)
	defer closeRecorder()

	mgr, err := browser.NewManager(ctx, cfg.Browser(), logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := mgr.Shutdown(context.Background()); err != nil {
			logger.Warn("Browser shutdown failed", zap.Error(err))
		}
	}()

	session, err := mgr.NewSession(ctx, cfg.Game())
	if err != nil {
		return fmt.Errorf("failed to open game tab: %w", err)
	}
	defer func() {
		if err := session.Close(ctx); err != nil {
			logger.Warn("Failed to close game tab", zap.Error(err))
		}
	}()

	if err := session.Navigate(ctx, cfg.Game().URL); err != nil {
		return err
	}
	// The game builds its DOM after load. Install fails below if the button never shows.
	if err := session.WaitReady(ctx, cfg.Game().Selectors.PlayButton, cfg.Game().InstallTimeout); err != nil {
		logger.Warn("Play button not ready", zap.Error(err))
	}

	host := session.Host()
	if err := agent.NewInstaller(host, logger).Install(ctx); err != nil {
		return fmt.Errorf("failed to install agent: %w", err)
	}

	loop, err := buildLoop(cfg, host, session.Executor(), recorder, logger)
	if err != nil {
		return err
	}
	return loop.Run(ctx)
}

// gameHost is everything the loop reads from the page.
type gameHost interface {
	game.StateReader
	CaptureFrame(ctx context.Context, size int) (schemas.Frame, error)
}

// buildLoop wires the sampling loop's collaborators.
func buildLoop(cfg *config.Config, host gameHost, exec actuator.Executor, recorder agent.SessionRecorder, logger *zap.Logger) (*agent.Loop, error) {
	sampler, err := agent.NewSampler(cfg.Agent(), game.NewExtractor(host, logger), host)
	if err != nil {
		return nil, err
	}

	transportCfg := decision.NewDefaultTransportConfig()
	transportCfg.Logger = logger
	transportCfg.ForceHTTP2 = cfg.Decision().ForceHTTP2
	httpClient := decision.NewHTTPClient(transportCfg, cfg.Decision().Timeout)
	client := decision.NewClient(cfg.Decision().URL, cfg.Decision().Headers, httpClient, logger)

	deps := agent.Deps{
		Prober:     host,
		Sampler:    sampler,
		Dispatcher: decision.NewDispatcher(client, logger),
		Actuator:   actuator.NewPointerActuator(exec, cfg.Agent().SteerRadius, logger),
		Recorder:   recorder,
	}
	return agent.NewLoop(deps, cfg.Agent(), logger), nil
}

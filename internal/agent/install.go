// internal/agent/install.go
package agent

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Installer binds the agent to a game page exactly once.
type Installer struct {
	host   Host
	logger *zap.Logger

	once sync.Once
	err  error
	done bool
}

// NewInstaller creates an Installer for host.
func NewInstaller(host Host, logger *zap.Logger) *Installer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Installer{host: host, logger: logger.Named("installer")}
}

// Install locates the play button and the render surface, then clicks play so the
// elements that only appear after the first game exist. Missing elements are fatal.
// Later calls return the first call's result without touching the page.
func (i *Installer) Install(ctx context.Context) error {
	i.once.Do(func() {
		i.err = i.install(ctx)
		i.done = i.err == nil
	})
	return i.err
}

// Installed reports whether Install has succeeded.
func (i *Installer) Installed() bool {
	return i.done
}

func (i *Installer) install(ctx context.Context) error {
	if err := i.require(ctx, "play button", i.host.HasPlayButton); err != nil {
		return err
	}
	if err := i.require(ctx, "game canvas", i.host.HasCanvas); err != nil {
		return err
	}
	if err := i.host.ClickPlay(ctx); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	i.logger.Info("installed! starting game loop")
	return nil
}

func (i *Installer) require(ctx context.Context, what string, probe func(context.Context) (bool, error)) error {
	found, err := probe(ctx)
	if err != nil {
		return fmt.Errorf("failed to locate %s: %w", what, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrElementNotFound, what)
	}
	return nil
}

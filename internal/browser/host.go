// internal/browser/host.go
package browser

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrAffordanceMissing is returned when a DOM affordance the agent depends on is absent.
var ErrAffordanceMissing = errors.New("page affordance missing")

// Runner runs chromedp actions against a tab. Session.RunActions satisfies it.
type Runner func(ctx context.Context, actions ...chromedp.Action) error

// Evaluator evaluates a script that returns a JSON string, and returns that string.
type Evaluator func(ctx context.Context, script string) (string, error)

// EvaluatorFor adapts a Runner into an Evaluator.
func EvaluatorFor(run Runner) Evaluator {
	return func(ctx context.Context, script string) (string, error) {
		var out string
		if err := run(ctx, chromedp.Evaluate(script, &out)); err != nil {
			return "", err
		}
		return out, nil
	}
}

// HostReader reads and pokes the game page. It implements game.StateReader and
// the installation and capture surfaces the agent needs.
type HostReader struct {
	eval   Evaluator
	game   config.GameConfig
	logger *zap.Logger
}

var _ game.StateReader = (*HostReader)(nil)

// NewHostReader creates a HostReader evaluating through run.
func NewHostReader(run Runner, cfg config.GameConfig, logger *zap.Logger) *HostReader {
	return NewHostReaderWithEvaluator(EvaluatorFor(run), cfg, logger)
}

// NewHostReaderWithEvaluator creates a HostReader over a raw Evaluator.
func NewHostReaderWithEvaluator(eval Evaluator, cfg config.GameConfig, logger *zap.Logger) *HostReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostReader{eval: eval, game: cfg, logger: logger.Named("host")}
}

// evalInto evaluates script and decodes its JSON result into out.
func (h *HostReader) evalInto(ctx context.Context, what, script string, out interface{}) error {
	raw, err := h.eval(ctx, script)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", what, err)
	}
	if err := json.UnmarshalFromString(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return nil
}

func (h *HostReader) CurrentPlayer(ctx context.Context) (*game.RawSnake, error) {
	var player *game.RawSnake
	if err := h.evalInto(ctx, "player", playerScript, &player); err != nil {
		return nil, err
	}
	return player, nil
}

func (h *HostReader) CurrentFood(ctx context.Context) ([]*game.RawFood, error) {
	var food []*game.RawFood
	err := h.evalInto(ctx, "food", foodScript, &food)
	return food, err
}

func (h *HostReader) CurrentPrey(ctx context.Context) ([]*game.RawPrey, error) {
	var prey []*game.RawPrey
	err := h.evalInto(ctx, "prey", preyScript, &prey)
	return prey, err
}

func (h *HostReader) CurrentEnemies(ctx context.Context) ([]*game.RawSnake, error) {
	var snakes []*game.RawSnake
	err := h.evalInto(ctx, "snakes", snakesScript, &snakes)
	return snakes, err
}

func (h *HostReader) CurrentScore(ctx context.Context) (int, error) {
	var score int
	err := h.evalInto(ctx, "score", scoreScript(h.game.Selectors.Score), &score)
	return score, err
}

// IsAlive compares the play button's inline opacity with the configured value.
func (h *HostReader) IsAlive(ctx context.Context) (bool, error) {
	var probe struct {
		Found   bool   `json:"found"`
		Opacity string `json:"opacity"`
	}
	if err := h.evalInto(ctx, "liveness", opacityScript(h.game.Selectors.PlayButton), &probe); err != nil {
		return false, err
	}
	if !probe.Found {
		return false, fmt.Errorf("%w: play button %q", ErrAffordanceMissing, h.game.Selectors.PlayButton)
	}
	return probe.Opacity == h.game.AliveOpacity, nil
}

func (h *HostReader) LastScore(ctx context.Context) (int, error) {
	var score *int
	if err := h.evalInto(ctx, "last score", lastScoreScript(h.game.Selectors.LastScore), &score); err != nil {
		return 0, err
	}
	if score == nil {
		return 0, fmt.Errorf("%w: last score %q", ErrAffordanceMissing, h.game.Selectors.LastScore)
	}
	return *score, nil
}

// HasPlayButton reports whether the start and liveness affordance is on the page.
func (h *HostReader) HasPlayButton(ctx context.Context) (bool, error) {
	return h.exists(ctx, h.game.Selectors.PlayButton)
}

// HasCanvas reports whether the game's render surface is on the page.
func (h *HostReader) HasCanvas(ctx context.Context) (bool, error) {
	return h.exists(ctx, h.game.Selectors.Canvas)
}

func (h *HostReader) exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	err := h.evalInto(ctx, "element "+selector, existsScript(selector), &found)
	return found, err
}

// ClickPlay clicks the play button. Some elements only exist after the first game starts.
func (h *HostReader) ClickPlay(ctx context.Context) error {
	var clicked bool
	if err := h.evalInto(ctx, "play click", clickScript(h.game.Selectors.PlayButton), &clicked); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("%w: play button %q", ErrAffordanceMissing, h.game.Selectors.PlayButton)
	}
	h.logger.Debug("Clicked play button.")
	return nil
}

// CaptureFrame grabs the render surface scaled to size x size RGBA pixels.
func (h *HostReader) CaptureFrame(ctx context.Context, size int) (schemas.Frame, error) {
	if size <= 0 {
		return schemas.Frame{}, fmt.Errorf("invalid capture size %d", size)
	}
	var capture struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Data   string `json:"data"`
	}
	if err := h.evalInto(ctx, "frame", captureScript(h.game.Selectors.Canvas, size), &capture); err != nil {
		return schemas.Frame{}, err
	}
	pixels, err := base64.StdEncoding.DecodeString(capture.Data)
	if err != nil {
		return schemas.Frame{}, fmt.Errorf("failed to decode frame pixels: %w", err)
	}
	frame := schemas.Frame{Width: capture.Width, Height: capture.Height, Pixels: pixels}
	if !frame.Valid() {
		return schemas.Frame{}, fmt.Errorf("captured %d bytes for a %dx%d frame", len(pixels), capture.Width, capture.Height)
	}
	return frame, nil
}

// internal/agent/sampler.go
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/xkilldash9x/snakepilot/internal/config"
	"github.com/xkilldash9x/snakepilot/internal/decision"
)

// SignalSampler sends the structured entity snapshot.
type SignalSampler struct {
	extractor SignalExtractor
}

// NewSignalSampler creates a sampler over extractor.
func NewSignalSampler(extractor SignalExtractor) *SignalSampler {
	return &SignalSampler{extractor: extractor}
}

func (s *SignalSampler) Sample(ctx context.Context) (decision.Request, error) {
	bundle, err := s.extractor.Extract(ctx)
	if err != nil {
		return decision.Request{}, fmt.Errorf("failed to extract signals: %w", err)
	}
	return decision.EncodeSignals(bundle)
}

// FrameSampler sends a downscaled pixel capture of the render surface.
type FrameSampler struct {
	source FrameSource
	size   int
}

// NewFrameSampler creates a sampler capturing size x size frames.
func NewFrameSampler(source FrameSource, size int) *FrameSampler {
	return &FrameSampler{source: source, size: size}
}

func (s *FrameSampler) Sample(ctx context.Context) (decision.Request, error) {
	frame, err := s.source.CaptureFrame(ctx, s.size)
	if err != nil {
		return decision.Request{}, fmt.Errorf("failed to capture frame: %w", err)
	}
	return decision.EncodeFrame(frame)
}

// NewSampler picks the sampler for the configured payload mode.
func NewSampler(cfg config.AgentConfig, extractor SignalExtractor, frames FrameSource) (Sampler, error) {
	switch strings.ToLower(cfg.Payload) {
	case "", config.PayloadSignals:
		if extractor == nil {
			return nil, fmt.Errorf("signal payload requires an extractor")
		}
		return NewSignalSampler(extractor), nil
	case config.PayloadPixels:
		if frames == nil {
			return nil, fmt.Errorf("pixel payload requires a frame source")
		}
		return NewFrameSampler(frames, cfg.CaptureSize), nil
	default:
		return nil, fmt.Errorf("unsupported payload %q", cfg.Payload)
	}
}

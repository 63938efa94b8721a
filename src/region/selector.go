package region

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"screen-tool/src/execx"
)

// Selector defines a synchronous region-selection API.
// Returns (region, cancelled, error). If cancelled is true, region is
// undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (Rect, bool, error)
}

// SlopSelector asks slop for an interactive rectangle.
type SlopSelector struct {
	Runner  execx.Runner
	Command string
	// Clamp trims the selection to the virtual screen.
	Clamp func(Rect) Rect
}

func NewSlopSelector(runner execx.Runner, command string) *SlopSelector {
	if command == "" {
		command = "slop"
	}
	return &SlopSelector{Runner: runner, Command: command, Clamp: ClampToDisplays}
}

func (s *SlopSelector) Select(ctx context.Context) (Rect, bool, error) {
	log.Debug().Str("selector", s.Command).Msg("starting interactive region selection")

	out, err := s.Runner.Output(ctx, s.Command, "-f", SlopFormat)
	if err != nil {
		// slop exits 1 with no output when the user presses Escape.
		if execx.ExitCode(err) == 1 && ctx.Err() == nil && strings.TrimSpace(string(out)) == "" {
			log.Info().Msg("region selection cancelled")
			return Rect{}, true, nil
		}
		return Rect{}, false, err
	}

	r, err := Parse(string(out))
	if errors.Is(err, ErrCancelled) {
		log.Info().Msg("region selection cancelled")
		return Rect{}, true, nil
	}
	if err != nil {
		return Rect{}, false, err
	}

	if s.Clamp != nil {
		r = s.Clamp(r)
	}
	if r.Empty() {
		log.Info().Msg("no valid region selected")
		return Rect{}, true, nil
	}

	log.Info().Str("region", r.Geometry()).Msg("region selected")
	return r, false, nil
}

// FixedSelector always returns the same region; used for headless runs
// with an explicit geometry.
type FixedSelector Rect

func (f FixedSelector) Select(ctx context.Context) (Rect, bool, error) {
	if err := ctx.Err(); err != nil {
		return Rect{}, false, err
	}
	return Rect(f), false, nil
}

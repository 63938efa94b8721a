// Package audio finds the PulseAudio source to record alongside the screen.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"screen-tool/src/execx"
)

// ErrNoSource means no monitor source was found.
var ErrNoSource = errors.New("no audio source detected")

// Source is one row of `pactl list short sources`.
type Source struct {
	Index  string
	Name   string
	Driver string
	Spec   string
	State  string
	line   string
}

// Monitor reports whether the source captures an output sink.
func (s Source) Monitor() bool {
	return strings.Contains(s.line, "monitor")
}

// ParseSources parses the short listing. Rows with fewer than two fields are skipped.
func ParseSources(out string) []Source {
	var sources []Source
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		s := Source{Index: fields[0], Name: fields[1], line: line}
		if len(fields) > 2 {
			s.Driver = fields[2]
		}
		if len(fields) > 3 {
			s.Spec = strings.Join(fields[3:len(fields)-1], " ")
			s.State = fields[len(fields)-1]
		}
		sources = append(sources, s)
	}
	return sources
}

// PickMonitor returns the first monitor source.
func PickMonitor(sources []Source) (Source, bool) {
	for _, s := range sources {
		if s.Monitor() {
			return s, true
		}
	}
	return Source{}, false
}

// Lister queries the audio server for sources.
type Lister struct {
	Runner   execx.Runner
	Command  string
	Override string
}

func NewLister(runner execx.Runner, command, override string) *Lister {
	if command == "" {
		command = "pactl"
	}
	return &Lister{Runner: runner, Command: command, Override: override}
}

func (l *Lister) List(ctx context.Context) ([]Source, error) {
	out, err := l.Runner.Output(ctx, l.Command, "list", "short", "sources")
	if err != nil {
		return nil, fmt.Errorf("failed to list audio sources: %w", err)
	}
	return ParseSources(string(out)), nil
}

// Detect returns the configured override, or the first monitor source.
func (l *Lister) Detect(ctx context.Context) (string, error) {
	if l.Override != "" {
		log.Info().Str("source", l.Override).Msg("using configured audio source")
		return l.Override, nil
	}
	sources, err := l.List(ctx)
	if err != nil {
		return "", err
	}
	s, ok := PickMonitor(sources)
	if !ok {
		log.Warn().Int("sources", len(sources)).Msg("no audio source detected")
		return "", ErrNoSource
	}
	log.Info().Str("source", s.Name).Msg("using audio source")
	return s.Name, nil
}

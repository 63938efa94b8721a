package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog/log"
)

var ErrStarted = errors.New("hotkey listener already started")

const stopTimeout = time.Second

// Parse converts a combination such as "Ctrl+Shift+S" into gohook key
// names, modifiers first as written. Every key must be known to gohook.
func Parse(combo string) ([]string, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, errors.New("empty hotkey")
	}

	var keys []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		name := normalize(strings.TrimSpace(part))
		if name == "" {
			return nil, fmt.Errorf("hotkey %q: empty key", combo)
		}
		if _, ok := hook.Keycode[name]; !ok {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", combo, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("hotkey %q: duplicate key %q", combo, name)
		}
		seen[name] = true
		keys = append(keys, name)
	}
	return keys, nil
}

func normalize(part string) string {
	switch part {
	case "control":
		return "ctrl"
	case "option":
		return "alt"
	case "win", "super", "meta":
		return "cmd"
	case "escape":
		return "esc"
	case "return":
		return "enter"
	default:
		return part
	}
}

// codesFor returns the keycodes that count as name, including the right-hand
// variant of modifiers.
func codesFor(name string) []uint16 {
	codes := []uint16{hook.Keycode[name]}
	if r, ok := hook.Keycode["r"+name]; ok && isModifier(name) {
		codes = append(codes, r)
	}
	return codes
}

func isModifier(name string) bool {
	switch name {
	case "ctrl", "alt", "shift", "cmd":
		return true
	}
	return false
}

type keyState struct {
	name    string
	codes   []uint16
	pressed bool
}

type binding struct {
	combo    string
	keys     []keyState
	callback func()
}

// press marks code as held and reports whether the whole combination is down.
// States reset on a match so holding the keys fires once.
func (b *binding) press(code uint16) bool {
	for i := range b.keys {
		if b.keys[i].matches(code) {
			b.keys[i].pressed = true
		}
	}
	for i := range b.keys {
		if !b.keys[i].pressed {
			return false
		}
	}
	for i := range b.keys {
		b.keys[i].pressed = false
	}
	return true
}

func (b *binding) release(code uint16) {
	for i := range b.keys {
		if b.keys[i].matches(code) {
			b.keys[i].pressed = false
		}
	}
}

func (k keyState) matches(code uint16) bool {
	for _, c := range k.codes {
		if c == code {
			return true
		}
	}
	return false
}

// Listener dispatches global key events to registered combinations.
type Listener struct {
	mu       sync.Mutex
	bindings []*binding
	events   chan hook.Event
	done     chan struct{}
}

func NewListener() *Listener {
	return &Listener{}
}

// Register binds combo to cb. Callbacks run on the listener goroutine and
// should hand work off quickly.
func (l *Listener) Register(combo string, cb func()) error {
	keys, err := Parse(combo)
	if err != nil {
		return err
	}
	b := &binding{combo: combo, callback: cb}
	for _, k := range keys {
		b.keys = append(b.keys, keyState{name: k, codes: codesFor(k)})
	}

	l.mu.Lock()
	l.bindings = append(l.bindings, b)
	l.mu.Unlock()
	log.Info().Str("hotkey", combo).Strs("keys", keys).Msg("hotkey registered")
	return nil
}

// Start begins listening for global key events.
func (l *Listener) Start() error {
	l.mu.Lock()
	if l.events != nil {
		l.mu.Unlock()
		return ErrStarted
	}
	evChan := hook.Start()
	if evChan == nil {
		l.mu.Unlock()
		return errors.New("gohook returned no event channel")
	}
	l.events = evChan
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go l.run(evChan, done)
	log.Info().Msg("hotkey listener started")
	return nil
}

func (l *Listener) run(evChan chan hook.Event, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("hotkey listener crashed")
		}
	}()
	for ev := range evChan {
		l.dispatch(ev)
	}
	log.Debug().Msg("hotkey event channel closed")
}

// Stop ends the global hook and waits for the dispatch goroutine.
func (l *Listener) Stop() {
	l.mu.Lock()
	if l.events == nil {
		l.mu.Unlock()
		return
	}
	done := l.done
	l.events = nil
	l.mu.Unlock()

	hook.End()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		log.Warn().Msg("hotkey event channel still open after stop")
	}
	log.Info().Msg("hotkey listener stopped")
}

func (l *Listener) dispatch(ev hook.Event) {
	if ev.Kind != hook.KeyDown && ev.Kind != hook.KeyUp {
		return
	}

	var fire []*binding
	l.mu.Lock()
	for _, b := range l.bindings {
		if ev.Kind == hook.KeyUp {
			b.release(ev.Keycode)
			continue
		}
		if b.press(ev.Keycode) {
			fire = append(fire, b)
		}
	}
	l.mu.Unlock()

	for _, b := range fire {
		log.Debug().Str("hotkey", b.combo).Msg("hotkey activated")
		if b.callback != nil {
			b.callback()
		}
	}
}

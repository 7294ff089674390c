// Package desktop turns a global hotkey and the system clipboard into
// translation requests and pastes results back into the focused window.
package desktop

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupportedPlatform is returned where no native hotkey/clipboard
// integration exists.
var ErrUnsupportedPlatform = errors.New("desktop: hotkey and clipboard integration is only available on windows")

type EventType int

const (
	EventClipboardChanged EventType = iota + 1
	EventHotkey
	// EventTranslate carries the clipboard text read after the hotkey delay.
	EventTranslate
	// EventEmptyClipboard is emitted instead of EventTranslate when there is
	// nothing to translate.
	EventEmptyClipboard
)

func (t EventType) String() string {
	switch t {
	case EventClipboardChanged:
		return "clipboard_changed"
	case EventHotkey:
		return "hotkey"
	case EventTranslate:
		return "translate"
	case EventEmptyClipboard:
		return "empty_clipboard"
	default:
		return "unknown"
	}
}

type Event struct {
	Type EventType
	Text string
	At   time.Time
}

type Service interface {
	Run(ctx context.Context) error
	Events() <-chan Event
}

// Listener is the platform source of hotkey presses and clipboard updates.
type Listener interface {
	// Run blocks until ctx is done, publishing events without blocking.
	Run(ctx context.Context, clipOut, hotkeyOut chan<- Event) error
	// ReadText returns the current clipboard text.
	ReadText() (string, error)
}

// Paster writes text to the clipboard and simulates the paste shortcut in
// the foreground window.
type Paster interface {
	SetText(text string) error
	SendPaste() error
}

type Config struct {
	// HotkeyDelay lets the clipboard settle before it is read.
	HotkeyDelay time.Duration
}

// New creates the service. A nil listener selects the native one on Run.
func New(cfg Config, l Listener) Service {
	if cfg.HotkeyDelay < 0 {
		cfg.HotkeyDelay = 0
	}
	return &coordinator{
		cfg:      cfg,
		listener: l,
		out:      make(chan Event, 64),
		clipIn:   make(chan Event, 64),
		hotkeyIn: make(chan Event, 64),
		fire:     make(chan time.Time, 8),
	}
}

package desktop

import (
	"context"
	"errors"
	"strings"
	"time"
)

type coordinator struct {
	cfg      Config
	listener Listener

	clipIn   chan Event
	hotkeyIn chan Event
	fire     chan time.Time

	out chan Event

	// owned by the Run loop
	lastText string
}

func (c *coordinator) Events() <-chan Event { return c.out }

func (c *coordinator) Run(ctx context.Context) error {
	defer close(c.out)

	if c.listener == nil {
		l, err := NewListener()
		if err != nil {
			return err
		}
		c.listener = l
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	listenErr := make(chan error, 1)
	go func() { listenErr <- c.listener.Run(ctx, c.clipIn, c.hotkeyIn) }()

	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case err := <-listenErr:
			if err == nil || errors.Is(err, context.Canceled) {
				return context.Cause(ctx)
			}
			return err
		case ev := <-c.clipIn:
			if ev.Text != c.lastText {
				c.lastText = ev.Text
				c.safeSend(ev)
			}
		case ev := <-c.hotkeyIn:
			c.safeSend(ev)
			c.schedule(ctx, ev.At)
		case <-c.fire:
			c.safeSend(c.resolve())
		}
	}
}

// schedule delivers a fire tick after HotkeyDelay unless ctx ends first.
func (c *coordinator) schedule(ctx context.Context, at time.Time) {
	if c.cfg.HotkeyDelay <= 0 {
		select {
		case c.fire <- at:
		default:
		}
		return
	}
	go func() {
		t := time.NewTimer(c.cfg.HotkeyDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			select {
			case c.fire <- at:
			case <-ctx.Done():
			}
		}
	}()
}

// resolve reads the clipboard, falling back to the last observed text when
// the read fails.
func (c *coordinator) resolve() Event {
	text, err := c.listener.ReadText()
	if err != nil {
		text = c.lastText
	}
	if strings.TrimSpace(text) == "" {
		return Event{Type: EventEmptyClipboard, At: time.Now()}
	}
	return Event{Type: EventTranslate, Text: text, At: time.Now()}
}

func (c *coordinator) safeSend(ev Event) {
	select {
	case c.out <- ev:
	default:
		// drop on overflow
	}
}

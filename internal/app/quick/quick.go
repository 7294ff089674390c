// Package quick runs the hotkey pipeline: clipboard text in, translated
// text pasted back into the focused window.
package quick

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quicktranslate/internal/i18n"
	"quicktranslate/internal/service/desktop"
)

type Translator interface {
	Translate(ctx context.Context, text, target, tone string) (string, error)
}

type Notifier interface {
	PlayFailure(ctx context.Context) error
}

type Config struct {
	Target     string
	Tone       string
	PasteDelay time.Duration
	Locale     string
}

type Runner struct {
	cfg      Config
	tr       Translator
	paster   desktop.Paster
	notifier Notifier
	msgs     *i18n.Messages
	logger   *zap.SugaredLogger

	consecutiveErrors int
}

func New(cfg Config, tr Translator, paster desktop.Paster, notifier Notifier, msgs *i18n.Messages, logger *zap.SugaredLogger) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.PasteDelay < 0 {
		cfg.PasteDelay = 0
	}
	return &Runner{cfg: cfg, tr: tr, paster: paster, notifier: notifier, msgs: msgs, logger: logger}
}

// Run handles events one at a time until ctx is done or events is closed.
func (r *Runner) Run(ctx context.Context, events <-chan desktop.Event) error {
	r.logger.Infow("Quick translate ready", "target", r.cfg.Target, "tone", r.cfg.Tone, "pasteDelay", r.cfg.PasteDelay.String())
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.handle(ctx, ev)
		}
	}
}

func (r *Runner) handle(ctx context.Context, ev desktop.Event) {
	switch ev.Type {
	case desktop.EventTranslate:
		if err := r.translateAndPaste(ctx, ev.Text); err != nil {
			r.consecutiveErrors++
			r.logger.Errorw("Quick translate failed",
				"error", err,
				"message", r.msgs.Error(r.cfg.Locale, err),
				"consecutiveErrors", r.consecutiveErrors)
			r.fail(ctx)
			return
		}
		r.consecutiveErrors = 0
	case desktop.EventEmptyClipboard:
		r.logger.Warnw(r.msgs.T(r.cfg.Locale, "empty_clipboard", nil))
		r.fail(ctx)
	case desktop.EventHotkey:
		r.logger.Debugw("Hotkey pressed", "at", ev.At)
	}
}

func (r *Runner) translateAndPaste(ctx context.Context, text string) error {
	start := time.Now()
	out, err := r.tr.Translate(ctx, text, r.cfg.Target, r.cfg.Tone)
	if err != nil {
		return err
	}
	out = r.msgs.Translation(r.cfg.Locale, out)
	if err := r.paster.SetText(out); err != nil {
		return err
	}

	// the hotkey target window needs focus back before the paste shortcut
	if r.cfg.PasteDelay > 0 {
		t := time.NewTimer(r.cfg.PasteDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-t.C:
		}
	}
	if err := r.paster.SendPaste(); err != nil {
		return err
	}
	r.logger.Infow("Translation pasted", "chars", len([]rune(out)), "duration", time.Since(start).String())
	return nil
}

func (r *Runner) fail(ctx context.Context) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.PlayFailure(ctx); err != nil {
		r.logger.Debugw("Failure sound not played", "error", err)
	}
}

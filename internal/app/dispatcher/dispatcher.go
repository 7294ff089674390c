// Package dispatcher routes a translation to the engine selected in the
// user's settings.
package dispatcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"quicktranslate/internal/service/translate"
	"quicktranslate/internal/settings"
)

// SettingsSource yields the settings for one call.
type SettingsSource interface {
	Snapshot() (settings.Snapshot, error)
}

type Dispatcher struct {
	src     SettingsSource
	engines map[string]translate.Engine
	logger  *zap.SugaredLogger
}

func New(src SettingsSource, logger *zap.SugaredLogger, engines ...translate.Engine) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	m := make(map[string]translate.Engine, len(engines))
	for _, e := range engines {
		m[e.Name()] = e
	}
	return &Dispatcher{src: src, engines: m, logger: logger}
}

// Translate reads the settings once, picks the active engine and runs a
// single request through it.
func (d *Dispatcher) Translate(ctx context.Context, text, target, tone string) (string, error) {
	snap, err := d.src.Snapshot()
	if err != nil {
		d.logger.Errorw("Failed to read settings", "error", err)
		return "", &translate.Error{Kind: translate.KindConfig, Engine: "settings", Err: err}
	}

	engine, ok := d.engines[snap.ActiveEngine]
	if !ok {
		err := translate.UnknownEngine(snap.ActiveEngine)
		d.logger.Errorw("Unknown engine", "engine", snap.ActiveEngine)
		return "", err
	}
	if cc, ok := engine.(translate.CredentialChecker); ok {
		if err := cc.CheckCredentials(snap); err != nil {
			d.logger.Warnw("Engine is not configured", "engine", engine.Name(), "error", err)
			return "", err
		}
	}

	req := translate.Request{Text: text, Target: target, Tone: translate.ParseTone(tone)}
	start := time.Now()
	out, err := engine.Translate(ctx, req, snap)
	if err != nil {
		d.logger.Errorw("Translation failed",
			"engine", engine.Name(),
			"kind", translate.KindOf(err).String(),
			"duration", time.Since(start).String(),
			"error", err,
		)
		return "", err
	}
	if out == translate.NoContentPlaceholder {
		d.logger.Warnw("Engine returned no choices", "engine", engine.Name())
	}

	d.logger.Infow("Translation done",
		"engine", engine.Name(),
		"target", req.Target,
		"tone", string(req.Tone),
		"chars", len([]rune(text)),
		"duration", time.Since(start).String(),
	)
	return out, nil
}

// Engines lists the registered engine names.
func (d *Dispatcher) Engines() []string {
	out := make([]string, 0, len(d.engines))
	for _, name := range settings.Engines {
		if _, ok := d.engines[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quicktranslate/internal/app/quick"
	"quicktranslate/internal/service/desktop"
	"quicktranslate/internal/service/notify"
)

func (a *app) daemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Translate the clipboard on Alt+T and paste the result",
		Long: `Copy text, press Alt+T and the translation replaces the selection.
Uses --target and --tone for every translation. Windows only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDaemon(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&a.cfg.Desktop.DefaultTarget, "target", a.cfg.Desktop.DefaultTarget, "target language")
	cmd.Flags().StringVar(&a.cfg.Desktop.DefaultTone, "tone", a.cfg.Desktop.DefaultTone, "Formal, Casual, Academic or Creative")
	cmd.Flags().DurationVar(&a.cfg.Desktop.PasteDelay, "paste-delay", a.cfg.Desktop.PasteDelay, "wait before Ctrl+V")
	cmd.Flags().DurationVar(&a.cfg.Desktop.HotkeyDelay, "hotkey-delay", a.cfg.Desktop.HotkeyDelay, "wait after Alt+T before reading the clipboard")
	return cmd
}

func (a *app) runDaemon(ctx context.Context) error {
	d := a.deps
	paster := d.Paster
	if paster == nil {
		p, err := desktop.NewPaster()
		if err != nil {
			return err
		}
		paster = p
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.NewSoundNotifier(d.Logger, a.cfg.Desktop.FailureSoundPath, nil)
	}

	svc := desktop.New(desktop.Config{HotkeyDelay: a.cfg.Desktop.HotkeyDelay}, d.Listener)
	runner := quick.New(quick.Config{
		Target:     a.cfg.Desktop.DefaultTarget,
		Tone:       a.cfg.Desktop.DefaultTone,
		PasteDelay: a.cfg.Desktop.PasteDelay,
		Locale:     a.cfg.UILocale,
	}, d.Translator, paster, notifier, d.Messages, d.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(gctx) })
	g.Go(func() error { return runner.Run(gctx, svc.Events()) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		d.Logger.Infow("Daemon stopped")
		return nil
	}
	return err
}

// Package cli is the cobra command tree of the quicktranslate binary.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quicktranslate/internal/app/quick"
	"quicktranslate/internal/config"
	"quicktranslate/internal/i18n"
	"quicktranslate/internal/server"
	"quicktranslate/internal/service/desktop"
)

// Deps are the collaborators a command needs, built after flags are parsed.
type Deps struct {
	Translator server.Translator
	Store      server.SettingsStore
	Messages   *i18n.Messages
	Logger     *zap.SugaredLogger

	// Optional. Nil selects the native desktop integration and the
	// configured failure sound.
	Listener desktop.Listener
	Paster   desktop.Paster
	Notifier quick.Notifier

	Close func()
}

// Builder turns the final configuration into Deps.
type Builder func(cfg *config.Config) (*Deps, error)

// Error is a command failure already rendered for the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

type app struct {
	cfg   *config.Config
	build Builder
	deps  *Deps
}

// NewRoot builds the command tree. Persistent flags write into cfg. The
// returned func releases whatever the Builder created.
func NewRoot(cfg *config.Config, build Builder) (*cobra.Command, func()) {
	a := &app{cfg: cfg, build: build}

	root := &cobra.Command{
		Use:               "quicktranslate",
		Short:             "Translate text through Zhipu GLM, Tencent TMT, Claude or Amazon Translate",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&cfg.DebugMode, "debug", cfg.DebugMode, "development logging")
	pf.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "settings file (default $XDG_CONFIG_HOME/quicktranslate/settings.json)")
	pf.StringVar(&cfg.UILocale, "locale", cfg.UILocale, "language of messages: en or zh")
	pf.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "timeout of a single engine request")

	root.AddCommand(a.translateCmd())
	root.AddCommand(a.settingsCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.daemonCmd())

	return root, a.close
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	deps, err := a.build(a.cfg)
	if err != nil {
		return err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}
	a.deps = deps
	return nil
}

func (a *app) close() {
	if a.deps != nil && a.deps.Close != nil {
		a.deps.Close()
	}
}

// fail renders err in the UI locale.
func (a *app) fail(err error) error {
	return &Error{Message: a.deps.Messages.Error(a.cfg.UILocale, err), Err: err}
}

func (a *app) message(id string, data map[string]any) string {
	return a.deps.Messages.T(a.cfg.UILocale, id, data)
}

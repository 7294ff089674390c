package cli

import (
	"github.com/spf13/cobra"

	"quicktranslate/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the translate and settings API for a local UI",
		Example: "quicktranslate serve --addr 127.0.0.1:8787",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(a.deps.Translator, a.deps.Store, a.deps.Messages, a.cfg.UILocale, a.deps.Logger)
			return srv.Run(cmd.Context(), a.cfg.ServerAddr)
		},
	}
	cmd.Flags().StringVarP(&a.cfg.ServerAddr, "addr", "a", a.cfg.ServerAddr, "listen address")
	return cmd
}

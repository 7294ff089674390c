package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) translateCmd() *cobra.Command {
	var to, tone string

	cmd := &cobra.Command{
		Use:   "translate [text]",
		Short: "Translate text with the active engine",
		Example: `  quicktranslate translate --to en "你好，世界"
  pbpaste | quicktranslate translate --to zh --tone Formal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimRight(string(b), "\r\n")
			}
			if strings.TrimSpace(text) == "" {
				msg := a.message("empty_input", nil)
				return &Error{Message: msg, Err: errors.New(msg)}
			}

			out, err := a.deps.Translator.Translate(cmd.Context(), text, to, tone)
			if err != nil {
				return a.fail(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.deps.Messages.Translation(a.cfg.UILocale, out))
			return err
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", a.cfg.Desktop.DefaultTarget, "target language, e.g. zh, en, ja")
	cmd.Flags().StringVar(&tone, "tone", a.cfg.Desktop.DefaultTone, "Formal, Casual, Academic or Creative")
	return cmd
}

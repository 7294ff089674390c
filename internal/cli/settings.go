package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"quicktranslate/internal/settings"
)

func (a *app) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change engine credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print settings with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.deps.Store.Load()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(settings.Masked(st))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set-engine <" + strings.Join(settings.Engines, "|") + ">",
		Short:     "Select the engine used for translations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: settings.Engines,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.deps.Store.SetActiveEngine(args[0])
			if errors.Is(err, settings.ErrInvalidEngine) {
				return &Error{Message: a.message("unknown_engine", map[string]any{"Engine": args[0]}), Err: err}
			}
			return a.saved(cmd, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-zhipu <api-key>",
		Short: "Store the Zhipu AI API key; an empty key clears it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saved(cmd, a.deps.Store.SetZhipuAPIKey(args[0]))
		},
	})

	var tencentRegion string
	tencentCmd := &cobra.Command{
		Use:   "set-tencent <secret-id> <secret-key>",
		Short: "Store Tencent Cloud TMT credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saved(cmd, a.deps.Store.SetTencentConfig(args[0], args[1], tencentRegion))
		},
	}
	tencentCmd.Flags().StringVar(&tencentRegion, "region", settings.DefaultTencentRegion, "Tencent Cloud region")
	cmd.AddCommand(tencentCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "set-anthropic <api-key>",
		Short: "Store the Anthropic API key; an empty key clears it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saved(cmd, a.deps.Store.SetAnthropicAPIKey(args[0]))
		},
	})

	var awsRegion string
	awsCmd := &cobra.Command{
		Use:   "set-aws <access-key-id> <secret-access-key>",
		Short: "Store Amazon Translate credentials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.saved(cmd, a.deps.Store.SetAWSConfig(args[0], args[1], awsRegion))
		},
	}
	awsCmd.Flags().StringVar(&awsRegion, "region", settings.DefaultAWSRegion, "AWS region")
	cmd.AddCommand(awsCmd)

	return cmd
}

func (a *app) saved(cmd *cobra.Command, err error) error {
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), a.message("settings_saved", nil))
	return err
}

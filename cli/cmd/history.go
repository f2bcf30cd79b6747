package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

func history(config *Config, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <number_of_days>",
		Short: "Print the rates saved by earlier runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, ok, err := parseDays(cmd, args[0])
			if !ok {
				return err
			}

			service, release, err := config.Factory(cmd.Context(), ServiceOptions{
				WithStorage: true,
				KeepEmpty:   opts.keepEmpty,
				Debug:       opts.debug,
				Logger:      log.New(cmd.ErrOrStderr(), "history-error ", 0),
			})
			if err != nil {
				return err
			}
			defer release()

			result, err := service.History(cmd.Context(), days, upperCodes(opts.currencies))
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result, opts.indent)
		},
	}
}

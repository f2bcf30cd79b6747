package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rates "github.com/malusev998/exchange-rates"
)

func printResult(w io.Writer, result rates.Result, indent bool) error {
	if result == nil {
		result = rates.Result{}
	}

	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// parseDays prints validation failures and reports whether the run may continue.
func parseDays(cmd *cobra.Command, arg string) (int, bool, error) {
	days, err := rates.ParseDays(arg)

	switch {
	case rates.IsValidationError(err):
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), err)
		return 0, false, nil
	case err != nil:
		return 0, false, err
	}

	return days, true, nil
}

func handleSave(ctx context.Context, service rates.Service, result rates.Result, debug bool, logger *log.Logger) error {
	saved, err := service.Save(ctx, result)

	if debug {
		for storage, rows := range saved {
			for i, row := range rows {
				logger.Printf("%d\tRate %s %s saved to %s: sale %s, purchase %s\n",
					i, rates.FormatDate(row.Date), row.Currency, storage, row.Sale, row.Purchase)
			}
		}
	}

	return err
}

func collectCobraCommand(config *Config, opts *options) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		days, ok, err := parseDays(cmd, args[0])
		if !ok {
			return err
		}

		ctx := cmd.Context()
		logger := log.New(cmd.OutOrStdout(), "fetch ", 0)
		errLogger := log.New(cmd.ErrOrStderr(), "fetch-error ", 0)

		service, release, err := config.Factory(ctx, ServiceOptions{
			WithStorage: opts.save,
			KeepEmpty:   opts.keepEmpty,
			Debug:       opts.debug,
			Logger:      errLogger,
		})
		if err != nil {
			return err
		}
		defer release()

		currencies := upperCodes(opts.currencies)

		handle := func() error {
			result, err := service.Collect(ctx, days, currencies)
			if err != nil {
				return err
			}

			if err := printResult(cmd.OutOrStdout(), result, opts.indent); err != nil {
				return err
			}

			if !opts.save {
				return nil
			}

			return handleSave(ctx, service, result, opts.debug, logger)
		}

		if err := handle(); err != nil {
			if opts.schedule == "" {
				return err
			}

			errLogger.Printf("ERROR: %v", err)
		}

		if opts.schedule == "" {
			return nil
		}

		return runSchedule(ctx, opts.schedule, func() {
			if err := handle(); err != nil {
				errLogger.Printf("ERROR: %v", err)
			}
		})
	}
}

// runSchedule calls job on every tick of spec until ctx is done.
func runSchedule(ctx context.Context, spec string, job func()) error {
	loc, err := time.LoadLocation(viper.GetString("location"))
	if err != nil {
		return fmt.Errorf("load location %s: %w", viper.GetString("location"), err)
	}

	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
	)

	if _, err := scheduler.AddFunc(spec, job); err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rates "github.com/malusev998/exchange-rates"
)

type (
	ServiceOptions struct {
		// WithStorage connects the configured storages.
		WithStorage bool
		// KeepEmpty is set by --keep-empty and overrides a false keep_empty key.
		KeepEmpty bool
		Debug     bool
		Logger    *log.Logger
	}

	// Factory builds the service once flags and the config file are read.
	// The returned func releases whatever the service holds.
	Factory func(ctx context.Context, options ServiceOptions) (rates.Service, func(), error)

	Config struct {
		Factory Factory
	}

	options struct {
		currencies []string
		keepEmpty  bool
		indent     bool
		save       bool
		schedule   string
		debug      bool
		configFile string
	}
)

func readConfig(path string) error {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	viper.SetConfigFile(absolutePath)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}

	return nil
}

func NewRootCommand(config *Config) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "exchange-rates <number_of_days>",
		Short:         "PrivatBank exchange rates for the last days",
		Version:       "v2.0.0",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return readConfig(opts.configFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "Debug flag")
	flags.StringVar(&opts.configFile, "config", "./config.yml", "Path to config file")
	flags.StringSliceVar(&opts.currencies, "cur", nil, "Additional currencies beside USD and EUR")
	flags.BoolVar(&opts.keepEmpty, "keep-empty", false, "Print dates without any matching currency")
	flags.BoolVar(&opts.indent, "indent", false, "Indent the JSON output")

	rootCmd.Flags().BoolVar(&opts.save, "save", false, "Save the rates to the configured storages")
	rootCmd.Flags().StringVar(&opts.schedule, "schedule", "", "Cron spec to keep collecting on")

	rootCmd.RunE = collectCobraCommand(config, opts)
	rootCmd.AddCommand(history(config, opts))

	return rootCmd
}

func Execute(ctx context.Context, config *Config, args []string) error {
	normalized, err := normalizeArgs(args)
	if err != nil {
		return err
	}

	rootCmd := NewRootCommand(config)
	rootCmd.SetArgs(normalized)

	return rootCmd.ExecuteContext(ctx)
}

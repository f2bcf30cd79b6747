package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/malusev998/exchange-rates/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error while loading .env file: %v", err)
	}

	setDefaults()
	viper.SetEnvPrefix("EXCHANGE_RATES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := cmd.Execute(ctx, &cmd.Config{Factory: newService}, os.Args[1:]); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

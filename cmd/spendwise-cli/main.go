package main

import (
	"context"
	"os"
	"time"

	"spendwise/internal/cli"
	applog "spendwise/internal/log"
	"spendwise/internal/terminal"
)

func main() {
	cli.LoadEnvFile()
	// Logs go to stderr so they do not interleave with the shell output.
	logger := cli.SetupLogger(os.Stderr, os.Getenv("LOG_LEVEL"))
	cfg := cli.MustLoadConfig(logger)

	app := cli.NewApp(cfg, logger)
	defer app.Close()

	// Closing stdin unblocks the pending read so the shell runs its final save.
	ctx, cancel := cli.GracefulShutdown(logger, 10*time.Second, func(context.Context) {
		_ = os.Stdin.Close()
	})
	defer cancel()

	sh := terminal.New(os.Stdin, os.Stdout, terminal.Options{
		Opener:         app.OpenSession,
		CurrencySymbol: cfg.CurrencySymbol,
		Logger:         logger,
	})
	if err := sh.Run(ctx); err != nil {
		logger.Error("Session ended with error", applog.FieldError, err)
		app.Close()
		os.Exit(1)
	}
}

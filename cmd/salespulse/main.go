package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"salespulse/internal/app"
	"salespulse/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to SALES_CONFIG_FILE or config.yaml)")
	flag.Parse()

	ctx := context.Background()
	application, err := app.NewApplication(ctx, *configPath)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = application.Run(ctx)
	infrastructure.CloseLogFile()
	if err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"

	"sfrecords/app"

	charmlog "github.com/charmbracelet/log"
)

func main() {

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})
	logger := slog.New(handler)

	application := app.New(logger)
	if err := BuildCLI(application).Run(context.Background(), os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

package main

import (
	"context"
	"os"

	"github.com/desertthunder/seqx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Logger:    logger,
		LookupEnv: os.LookupEnv,
	})

	app := &cli.Command{
		Name:     "seqx",
		Usage:    "Sequence numbers, reordering and version stamps for typed elements",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/seqx/internal/formatter"
	"github.com/desertthunder/seqx/internal/repositories"
	"github.com/desertthunder/seqx/internal/sequencer"
	"github.com/desertthunder/seqx/internal/server"
	"github.com/desertthunder/seqx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve opens the database, optionally migrates it, and serves the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("auto-migrate") {
		config.Server.AutoMigrate = cmd.Bool("auto-migrate")
	}
	if err := shared.SetLogLevel(r.logger, cmd.String("log-level")); err != nil {
		return err
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if config.Server.AutoMigrate {
		applied, err := shared.RunMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Info("migrations applied", "count", applied)
	}

	seq := sequencer.New(repositories.NewSequenceElementRepository(db), r.logger)
	router := server.NewRouter(seq, db, config.Server, shared.WithLogger(r.logger, "component", "http"))

	ln, err := net.Listen("tcp", config.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Server.Addr(), err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, server.NewHTTPServer(config.Server, router), ln, r.logger)
}

// MigrateUp applies pending migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	_, db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("migrations complete", "applied", applied)
	return r.writePlain("Applied %d migration(s)\n", applied)
}

// MigrateDown rolls back the most recent migration.
func (r *Runner) MigrateDown(ctx context.Context, cmd *cli.Command) error {
	_, db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.RollbackMigration(db)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	return r.writePlain("Rolled back migration %04d\n", version)
}

// ListElements prints the elements of one type in sequence order.
func (r *Runner) ListElements(ctx context.Context, cmd *cli.Command) error {
	elementType := cmd.String("type")
	if elementType == "" {
		return fmt.Errorf("%w: --type", shared.ErrMissingArgument)
	}

	_, db, err := r.openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	seq := sequencer.New(repositories.NewSequenceElementRepository(db), r.logger)
	elements, err := seq.List(ctx, elementType)
	if err != nil {
		return err
	}

	switch format := cmd.String("format"); format {
	case "json":
		if elements == nil {
			return r.writeJSON([]any{}, false)
		}
		return r.writeJSON(elements, false)
	case "csv":
		data, err := formatter.ToCSV(elements)
		if err != nil {
			return err
		}
		return r.write(data)
	case "text", "":
		return r.write(formatter.ToText(elementType, elements))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, format)
	}
}

// ConfigInit writes the default config file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ahvonen/gymlog/internal/envstruct"
	"github.com/ahvonen/gymlog/internal/errors"
	"github.com/ahvonen/gymlog/internal/logging"
	"github.com/ahvonen/gymlog/internal/sqlite"
	"github.com/ahvonen/gymlog/internal/workout"
)

type config struct {
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"GYMLOG_SQLITE_URL" envDefault:"./gymlog.sqlite3"`
}

// application bundles what every command needs.
type application struct {
	out    io.Writer
	logger *slog.Logger
	svc    *workout.Service
}

func run(ctx context.Context, out io.Writer, logger *slog.Logger, lookupEnv func(string) (string, bool), args []string) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "closing db", errors.SlogError(closeErr))
		}
	}()

	app := application{
		out:    out,
		logger: logger,
		svc:    workout.NewService(db, logger),
	}

	command := "today"
	if len(args) > 0 {
		command = args[0]
	}
	ctx = logging.WithAttrs(ctx, slog.String("command", command))
	switch command {
	case "today":
		return app.today(ctx)
	case "setup":
		return app.setup(ctx, args[1:])
	case "plan":
		return app.plan(ctx)
	case "workout":
		return app.manageWorkouts(ctx, args[1:])
	case "log":
		return app.log(ctx, args[1:])
	case "history":
		return app.history(ctx)
	case "trends":
		return app.trends(ctx)
	case "settings":
		return app.settings(ctx, args[1:])
	case "reset":
		if err = app.svc.FactoryReset(ctx); err != nil {
			return errors.Wrap(err, "factory reset")
		}
		fmt.Fprintln(app.out, "All data deleted.")
		return nil
	default:
		return errors.New(fmt.Sprintf(
			"unknown command %q (expected today, setup, plan, workout, log, history, trends, settings or reset)", command))
	}
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, os.Stdout, logger, os.LookupEnv, os.Args[1:]); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure running command", errors.SlogError(err))
		os.Exit(1)
	}
}

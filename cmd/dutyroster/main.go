package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/alexanderramin/dutyroster/internal/cli"
	"github.com/alexanderramin/dutyroster/internal/config"
	"github.com/alexanderramin/dutyroster/internal/db"
	"github.com/alexanderramin/dutyroster/internal/metrics"
	"github.com/alexanderramin/dutyroster/internal/repository"
	"github.com/alexanderramin/dutyroster/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if cfg.NoColor || !stdoutTTY {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	slog.Debug("database ready", "path", cfg.DBPath)

	// Wire repositories and unit of work
	runRepo := repository.NewSQLiteRunRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}
	recorder := metrics.NewRecorder()

	app := &cli.App{
		Plans:       service.NewPlanService(uow, recorder, observers...),
		Runs:        service.NewRunService(runRepo, uow, observers...),
		Constraints: cfg.Constraints(),
		Metrics:     recorder,
	}

	// Interactive resolution and spinners need a terminal on both ends.
	app.IsInteractive = func() bool {
		in := os.Stdin.Fd()
		return stdoutTTY && (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in))
	}

	return cli.NewRootCmd(app).Execute()
}

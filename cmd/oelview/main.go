package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"github.com/jask/oelview/internal/api"
	"github.com/jask/oelview/internal/config"
	"github.com/jask/oelview/internal/database"
	"github.com/jask/oelview/internal/devapi"
	"github.com/jask/oelview/internal/logging"
	"github.com/jask/oelview/internal/router"
	"github.com/jask/oelview/internal/tui"
	"github.com/jask/oelview/internal/view"
)

const usage = `usage:
  oelview [game|polls] [path]   open the spectator or polls view (path: /, /view/:id, /results/:id)
  oelview devserver             serve the local fixture API`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("log: %v", err)
	}
	defer func() { _ = closeLog() }()

	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		fmt.Println(usage)
		return
	}
	if len(args) > 0 && args[0] == "devserver" {
		if err := runDevServer(cfg, logger); err != nil {
			log.Fatalf("devserver: %v", err)
		}
		return
	}

	app, start, err := parseArgs(cfg, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := runTUI(cfg, app, start, logger); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs picks the app and start path, falling back to ui.app and ui.start.
func parseArgs(cfg config.Config, args []string) (string, string, error) {
	app, start := cfg.UI.App, cfg.UI.Start
	if len(args) > 0 {
		switch args[0] {
		case config.AppGame, config.AppPolls:
			app = args[0]
			args = args[1:]
		}
	}
	if len(args) > 0 {
		start = args[0]
		args = args[1:]
	}
	if len(args) > 0 {
		return "", "", fmt.Errorf("unexpected argument %q", args[0])
	}
	return app, start, nil
}

func runTUI(cfg config.Config, app, start string, logger logr.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		CSRFToken: cfg.API.CSRFToken,
		Log:       logger.WithName("api"),
	})
	if err != nil {
		return err
	}

	deps := view.Deps{Ctx: ctx, Timeout: cfg.API.Timeout, Log: logger.WithName(app)}
	var factory view.Factory
	switch app {
	case config.AppGame:
		factory = view.GameFactory{Deps: deps, Src: client, Board: func() view.BoardRenderer { return view.NewTextBoard() }}
	default:
		factory = view.PollFactory{Deps: deps, Src: client}
	}

	route, redirected := router.Parse(start)
	if redirected {
		logger.Info("unknown start path, redirecting home", "path", start)
	}

	p := tea.NewProgram(tui.New(factory, route, logger.WithName("tui")), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runDevServer(cfg config.Config, logger logr.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := cfg.DevServer.DBPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := database.RunMigrations(path); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := devapi.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	srv := devapi.New(db, logger.WithName("devserver"), devapi.WithCSRFToken(cfg.API.CSRFToken))
	fmt.Printf("serving on http://%s (db %s)\n", cfg.DevServer.Addr, path)
	return srv.ListenAndServe(ctx, cfg.DevServer.Addr)
}

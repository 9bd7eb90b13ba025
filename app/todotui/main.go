package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jrazmi/todolist/app/todotui/config"
	"github.com/jrazmi/todolist/app/todotui/ui"
	"github.com/jrazmi/todolist/client/clock"
	"github.com/jrazmi/todolist/client/session"
	"github.com/jrazmi/todolist/client/taskapi"
	"github.com/jrazmi/todolist/client/tasksync"
	"github.com/jrazmi/todolist/client/toasts"
	"github.com/jrazmi/todolist/sdk/logger"
)

var build = "develop"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "todotui:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(config.Dir(), "todotui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	log := logger.NewDefault(
		logger.WithOutput(logFile),
		logger.WithFormat("json"),
		logger.WithAttrs(slog.String("service", "todotui"), slog.String("build", build)),
	)

	tokens := openTokens(cfg.Keyring, log)

	api, err := taskapi.New(cfg.ServerURL)
	if err != nil {
		return err
	}

	clk := clock.Real{}
	queue := toasts.New(clk)
	engine := tasksync.NewEngine(tasksync.Deps{
		API:      api,
		Tokens:   tokens,
		Toasts:   queue,
		Clock:    clk,
		Log:      log.Logger,
		PageSize: cfg.PageSize,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- engine.Run(ctx)
	}()

	log.Info("startup", "server", cfg.ServerURL)
	_, err = tea.NewProgram(ui.New(engine, queue, api, tokens), tea.WithAltScreen()).Run()

	cancel()
	<-engineDone
	log.Info("shutdown")

	return err
}

func openTokens(cfg config.Keyring, log *logger.Logger) session.Store {
	if cfg.Disabled {
		return session.NewMemory()
	}

	ring, err := session.OpenKeyring(cfg.FileDir, cfg.Account)
	if err != nil {
		log.Warn("keyring unavailable, keeping the session in memory", "err", err)
		return session.NewMemory()
	}
	return ring
}

// taskboard-tui shows the board in a terminal. It reads the same config
// as the server and talks to the task API named by --api-url.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/s1natex/taskboard/internal/apiclient"
	"github.com/s1natex/taskboard/internal/board"
	"github.com/s1natex/taskboard/internal/config"
	"github.com/s1natex/taskboard/internal/middleware"
	"github.com/s1natex/taskboard/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load("taskboard-tui", args)
	if err != nil {
		return err
	}

	// Anything written to stdout or stderr would corrupt the alt screen.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.LogLevel)}))

	opts := []apiclient.Option{
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		apiclient.WithLogger(logger),
	}
	switch cfg.AuthMode() {
	case middleware.AuthAPIKey:
		opts = append(opts, apiclient.WithAPIKey(cfg.Auth.APIKey))
	case middleware.AuthBearer:
		opts = append(opts, apiclient.WithBearerToken(cfg.Auth.BearerToken))
	}
	client, err := apiclient.New(cfg.APIBaseURL(), opts...)
	if err != nil {
		return err
	}

	logger.Info("tui_start", slog.String("api", cfg.APIBaseURL()))
	program := tea.NewProgram(tui.New(board.New(client, logger)), tea.WithAltScreen())
	_, err = program.Run()
	return err
}

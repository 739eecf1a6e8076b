package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/labproto/cli/internal/config"
)

// DebugEnv turns on debug logging to debug.log in the config dir.
const DebugEnv = "LABPROTO_DEBUG"

// OpenLogger returns the debug logger. The TUI owns stdout, so records go to
// cfg.LogFile, or to debug.log when DebugEnv is set. Otherwise they are dropped.
func OpenLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	path := ""
	if cfg != nil {
		path = strings.TrimSpace(cfg.LogFile)
	}
	if path == "" && os.Getenv(DebugEnv) != "" {
		path = filepath.Join(config.Dir(), "debug.log")
	}
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "labproto")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), f.Close, nil
}

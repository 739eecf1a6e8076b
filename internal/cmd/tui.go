package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/config"
	"github.com/gravitrone/labproto/cli/internal/ui"
)

// RunTUI opens the full-screen app. Without a config it still starts on an
// interactive terminal, and saves report that a login is needed.
func RunTUI(ctx context.Context, opts ...ui.Option) (err error) {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if !IsInteractiveTerminal(os.Stdin) || !IsInteractiveTerminal(os.Stdout) {
			fmt.Println("not logged in. run 'labproto login' first.")
			return err
		}
		cfg = nil
	}

	log, closeLog, err := OpenLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = fmt.Errorf("close cache: %w", cerr)
		}
	}()

	var client *api.Client
	if cfg != nil {
		client = cfg.Client()
	}
	log.Debug("tui start", "server", cfg.Server(), "cache", cfg.CacheBackend())

	app := ui.NewApp(client, store, append([]ui.Option{ui.WithLogger(log)}, opts...)...)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// EditCmd returns the `labproto edit [id]` command.
func EditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id]",
		Short: "Open the protocol editor (no id starts a new protocol)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id *int64
			if len(args) == 1 {
				v, err := parseID(args[0])
				if err != nil {
					return err
				}
				id = &v
			}
			return RunTUI(cmd.Context(), ui.StartInEditor(id))
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid protocol id %q", raw)
	}
	return id, nil
}

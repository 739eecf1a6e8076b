package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/config"
)

const loginTimeout = 10 * time.Second

// RunInteractiveLogin prompts for a server and token, checks the token
// against the server, and persists config.
func RunInteractiveLogin(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "server [%s]: ", api.DefaultBaseURL)
	server, _ := reader.ReadString('\n')
	server = strings.TrimSpace(server)
	if server == "" {
		server = api.DefaultBaseURL
	}

	fmt.Fprint(out, "token: ")
	token, err := readToken(in, reader)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}

	fmt.Fprint(out, "username (optional): ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	client := api.NewClient(server, token).WithTimeout(loginTimeout)
	if _, err := client.QueryProtocols(ctx, api.QueryParams{"per_page": "1"}); err != nil {
		if api.IsUnauthorized(err) {
			return fmt.Errorf("login failed: token rejected by %s", server)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	cfg := &config.Config{
		APIKey:   token,
		Username: username,
	}
	if server != api.DefaultBaseURL {
		cfg.BaseURL = server
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if username != "" {
		fmt.Fprintf(out, "logged in as %s\n", username)
	} else {
		fmt.Fprintf(out, "logged in to %s\n", server)
	}
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// readToken reads the token without echo on a terminal, or as a plain line
// otherwise.
func readToken(in io.Reader, reader *bufio.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && IsInteractiveTerminal(f) {
		raw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// LoginCmd returns the `labproto login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a protocol server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

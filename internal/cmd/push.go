package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/editor"
	"github.com/gravitrone/labproto/cli/internal/richtext"
)

// PushCmd returns the `labproto push -f file.yaml` command.
func PushCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "push -f file.yaml",
		Short: "Create or update a protocol from a YAML file",
		Long: "Create or update a protocol from a YAML file. A file with an id updates\n" +
			"that protocol; a file without one creates a new protocol. Use -f - for stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := readPushFile(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if dryRun {
				ed := stageProtocol(p, nil)
				req, err := ed.BeginSave()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d sections)\n", req.Method, req.Path, len(req.Record.Blocks))
				return nil
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			log, closeLog, err := OpenLogger(s.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			ed := stageProtocol(p, s.store, editor.WithLogger(log))
			return pushProtocol(cmd.Context(), ed, s.client, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "protocol YAML file (- for stdin)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the request without sending it")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readPushFile(stdin io.Reader, path string) (api.Protocol, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return api.Protocol{}, fmt.Errorf("read %s: %w", path, err)
	}

	var p api.Protocol
	if err := yaml.Unmarshal(data, &p); err != nil {
		return api.Protocol{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(p.Name) == "" {
		return api.Protocol{}, fmt.Errorf("parse %s: name is required", path)
	}
	return p, nil
}

// stageProtocol loads p into a fresh editor as local edits.
func stageProtocol(p api.Protocol, store cache.Store, opts ...editor.Option) *editor.Editor {
	ed := editor.New(p.ID, store, opts...)
	ed.SetName(p.Name)
	ed.SetDescription(richtext.Deserialize(p.Description))
	ed.SetBlocks(p.Blocks)
	return ed
}

func pushProtocol(ctx context.Context, ed *editor.Editor, up editor.Upserter, out io.Writer) error {
	created := ed.IsNew()
	if err := ed.Save(ctx, up); err != nil {
		return fmt.Errorf("push protocol: %w", err)
	}
	verb := "updated"
	if created {
		verb = "created"
	}
	fmt.Fprintf(out, "%s protocol #%d (%d sections)\n", verb, *ed.ID(), len(ed.Blocks()))
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/blocks"
	"github.com/gravitrone/labproto/cli/internal/cache"
	"github.com/gravitrone/labproto/cli/internal/ui/components"
)

// ShowCmd returns the `labproto show <id>` command.
func ShowCmd() *cobra.Command {
	var (
		asYAML  bool
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()

			p, err := loadProtocol(cmd.Context(), s.store, s.client, id, refresh)
			if err != nil {
				return err
			}
			if asYAML {
				return writeYAML(cmd.OutOrStdout(), p)
			}
			return renderProtocol(cmd.OutOrStdout(), p, outputWidth())
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the push file format instead")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "skip the cache and ask the server")
	return cmd
}

// loadProtocol reads through the cache. With refresh it asks the server
// first and stores the answer.
func loadProtocol(ctx context.Context, store cache.Store, client *api.Client, id int64, refresh bool) (api.Protocol, error) {
	if !refresh {
		return cache.Lookup(ctx, store, client, id)
	}
	p, err := client.GetProtocol(ctx, id)
	if err != nil {
		return api.Protocol{}, fmt.Errorf("fetch protocol %d: %w", id, err)
	}
	if !p.HasID() {
		p.ID = api.Int64(id)
	}
	if err := store.Put(ctx, *p); err != nil {
		return api.Protocol{}, fmt.Errorf("cache put %d: %w", id, err)
	}
	return *p, nil
}

func writeYAML(out io.Writer, p api.Protocol) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func renderProtocol(out io.Writer, p api.Protocol, width int) error {
	boxWidth := min(width, 100)
	wrap := max(components.BoxContentWidth(boxWidth), 20)

	rows := []components.TableRow{{Label: "Sections", Value: strconv.Itoa(len(p.Blocks))}}
	if p.CreatedBy != "" {
		rows = append(rows, components.TableRow{Label: "Created by", Value: p.CreatedBy})
	}
	if p.UpdatedOn != nil {
		rows = append(rows, components.TableRow{Label: "Updated", Value: p.UpdatedOn.Local().Format("2006-01-02 15:04")})
	}

	var b strings.Builder
	b.WriteString(components.Table(fmt.Sprintf("#%d %s", p.IDValue(), p.Name), rows, boxWidth))
	b.WriteString("\n")

	if desc := strings.TrimSpace(p.Description); desc != "" {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return fmt.Errorf("markdown renderer: %w", err)
		}
		// Each stored line is its own paragraph.
		md, err := r.Render(strings.ReplaceAll(components.SanitizeText(desc), "\n", "\n\n"))
		if err != nil {
			return fmt.Errorf("render description: %w", err)
		}
		b.WriteString(md)
	} else {
		b.WriteString("\n")
	}

	for i, blk := range p.Blocks {
		lines := make([]string, 0, len(blocks.Schema(blk.Type)))
		for _, spec := range blocks.Schema(blk.Type) {
			val := strings.TrimSpace(blk.Field(spec.Name))
			if val == "" {
				val = "-"
			}
			lines = append(lines, components.InfoRow(spec.Label, val))
		}
		title := fmt.Sprintf("%d · %s", i+1, blk.Type.Label())
		b.WriteString(components.Card(title, strings.Join(lines, "\n"), boxWidth, components.CardNormal))
		b.WriteString("\n")
	}
	_, err := io.WriteString(out, b.String())
	return err
}

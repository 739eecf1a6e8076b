package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gravitrone/labproto/cli/internal/api"
	"github.com/gravitrone/labproto/cli/internal/ui/components"
)

// ListCmd returns the `labproto list` command.
func ListCmd() *cobra.Command {
	var filter api.SearchFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List protocols, optionally filtered by plate, reagent, sample or creator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.close() }()
			return runList(cmd.Context(), s.client, filter, cmd.OutOrStdout(), outputWidth())
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Plate, "plate", "", "only protocols that used this plate")
	f.StringVar(&filter.Reagent, "reagent", "", "only protocols that used this reagent")
	f.StringVar(&filter.Sample, "sample", "", "only protocols that recorded this sample")
	f.StringVar(&filter.Creator, "creator", "", "only protocols created by this user")
	f.BoolVar(&filter.Archived, "archived", false, "include archived protocols")
	f.IntVar(&filter.Page, "page", 0, "result page (1-based)")
	f.IntVar(&filter.PerPage, "per-page", 0, "results per page")
	return cmd
}

func filterIsEmpty(f api.SearchFilter) bool {
	return f == api.SearchFilter{}
}

func runList(ctx context.Context, client *api.Client, filter api.SearchFilter, out io.Writer, width int) error {
	var (
		items []api.Protocol
		extra string
	)
	if filterIsEmpty(filter) {
		list, err := client.QueryProtocols(ctx, nil)
		if err != nil {
			return fmt.Errorf("list protocols: %w", err)
		}
		items = list
	} else {
		res, err := client.Search(ctx, filter)
		if err != nil {
			return fmt.Errorf("search protocols: %w", err)
		}
		items = res.Protocols
		extra = fmt.Sprintf(" (%d runs, %d samples matched)", len(res.Runs), len(res.Samples))
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "no protocols found")
		return nil
	}
	fmt.Fprint(out, protocolTable(items, width))
	fmt.Fprintf(out, "\n%d protocols%s\n", len(items), extra)
	return nil
}

func protocolTable(items []api.Protocol, width int) string {
	cols := []components.TableColumn{
		{Header: "ID", Width: 6, Align: lipgloss.Right},
		{Header: "Sections", Width: 8, Align: lipgloss.Right},
		{Header: "Creator", Width: 12},
		{Header: "Updated", Width: 16},
		{Header: "Name", Width: 24},
	}
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		updated := "-"
		if p.UpdatedOn != nil {
			updated = p.UpdatedOn.Local().Format("2006-01-02 15:04")
		}
		creator := p.CreatedBy
		if creator == "" {
			creator = "-"
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.IDValue(), 10),
			strconv.Itoa(len(p.Blocks)),
			components.SanitizeOneLine(creator),
			updated,
			components.SanitizeOneLine(p.Name),
		})
	}
	return components.TableGrid(cols, rows, min(width, 120), -1)
}

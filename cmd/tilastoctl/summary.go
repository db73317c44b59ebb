package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tyotilasto/internal/core"
	"tyotilasto/internal/format"
	apphttp "tyotilasto/internal/http"
	"tyotilasto/internal/services"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("9"))
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Build the dashboard summary and print it",
	Long: `Build the summary from the configured backend, bypassing the cache.

Examples:
  tilastoctl summary
  tilastoctl summary --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer closeApp(ctx, app)

		sum, err := app.Summaries.Build(ctx)
		if err != nil {
			return err
		}
		rows := app.Summaries.Ordered(sum)

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(apphttp.NewSummaryJSON(sum, rows))
		}
		return printSummary(out, sum, rows)
	},
}

func init() {
	summaryCmd.Flags().Bool("json", false, "print the /api/summary JSON document")
}

func printSummary(w io.Writer, sum core.Summary, rows []services.OrderedRegion) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "Dataa ei löytynyt.")
		return err
	}

	failed := map[int]bool{}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Alue", "Indikaattori", "Jakso", "Arvo", "Kk", "Vuosi")

	n := 0
	for _, region := range rows {
		for _, ind := range region.Indicators {
			switch {
			case ind.Failed:
				t.Row(region.Name, ind.Label, "", "virhe", "", "")
				failed[n] = true
			case ind.Present:
				s := ind.Summary
				t.Row(region.Name, ind.Label, s.Period, format.Number(s.Value), s.MonthTrend.String(), s.YearTrend.String())
			default:
				continue
			}
			n++
		}
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case failed[row]:
			return failedStyle
		}
		return cellStyle
	})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d pairs, %d failures, built %s\n",
		sum.Len(), len(sum.Failures), humanize.Time(sum.GeneratedAt))
	return err
}

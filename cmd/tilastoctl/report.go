package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tyotilasto/internal/services"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the newest monthly report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer closeApp(ctx, app)

		out := cmd.OutOrStdout()
		r, ok, err := app.Reports.Latest(ctx)
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(out, "Raporttia ei löytynyt.")
			return err
		}

		fmt.Fprintf(out, "%s\n%s\n\n", headerStyle.Render(r.Period), strings.Repeat("-", len(r.Period)+2))
		for i, p := range services.Paragraphs(r.Text) {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, strings.Join(p, "\n"))
		}
		return nil
	},
}

package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tyotilasto/internal/adapters"
	"tyotilasto/internal/backend"
	applog "tyotilasto/internal/log"
	"tyotilasto/internal/services"
	"tyotilasto/internal/storage"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy the catalog's series and the latest report into SQLite",
	Long: `Read every catalog pair from the configured backend and write it into the
SQLite mirror, so a server started with DATA_BACKEND=sqlite can serve the
dashboard without reaching the document store.

Examples:
  DATA_BACKEND=firestore tilastoctl mirror
  tilastoctl mirror --db /var/lib/tyotilasto/mirror.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.DataBackend == string(backend.SQLiteBackend) {
			return errors.New("mirror needs a source backend other than sqlite")
		}

		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			dbPath = cfg.SQLiteDBPath
		}

		app, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer closeApp(ctx, app)

		repo, err := storage.NewSQLiteRepository(dbPath)
		if err != nil {
			return fmt.Errorf("open mirror: %w", err)
		}
		defer repo.Close()

		written, err := adapters.NewSQLiteAdapter(repo).Mirror(ctx, app.Backend, app.Catalog.Pairs(), services.SeriesLimit)
		if err != nil {
			return fmt.Errorf("mirror after %d observations: %w", written, err)
		}

		total, err := repo.CountObservations(ctx)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Mirror complete",
			applog.FieldBackend, cfg.DataBackend,
			"db_path", dbPath,
			"written", written,
			"total", total)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s observations (%s in mirror)\n",
			humanize.Comma(int64(written)), humanize.Comma(total))
		return nil
	},
}

func init() {
	mirrorCmd.Flags().String("db", "", "mirror database path (default: SQLITE_DB_PATH)")
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tyotilasto/internal/amqp"
	applog "tyotilasto/internal/log"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Publish a data refresh notification",
	Long: `Publish a refresh message to the broker so running servers rebuild
their cached summary. Ingestion jobs call this after writing a new month.

Examples:
  tilastoctl notify --period 2025M07
  tilastoctl notify --period 2025M07 --source ingest`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.AMQPURL == "" {
			return errors.New("AMQP_URL is not set")
		}
		period, _ := cmd.Flags().GetString("period")
		source, _ := cmd.Flags().GetString("source")

		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return fmt.Errorf("connect to broker: %w", err)
		}
		defer client.Close()

		msg := amqp.NewRefreshMessage(period, source)
		if err := client.PublishRefresh(ctx, msg); err != nil {
			return err
		}

		logger.InfoContext(ctx, "Refresh notification published",
			applog.FieldPeriod, period,
			"source", source,
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
		return nil
	},
}

func init() {
	notifyCmd.Flags().String("period", "", "newest period ingested, e.g. 2025M07")
	notifyCmd.Flags().String("source", "tilastoctl", "who triggered the refresh")
}

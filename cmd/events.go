/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brgy-records/apiserver/config"
	"github.com/brgy-records/apiserver/internal/logger"
	"github.com/brgy-records/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd groups record event tooling.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect record events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print record events as they are published",
	Long: `Subscribes to the records topic of the configured broker and prints
one JSON line per created record until interrupted. Usage:

	MQ_BACKEND=rabbitmq brgy events tail
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "brgy-events")
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("open message broker: %w", err)
		}
		events := mq.NewPublisher(broker, cfg.MQ.RecordsTopic, log)
		defer events.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		err = events.Tail(ctx, func(event mq.RecordEvent) error {
			return enc.Encode(event)
		})
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbthost/voter-registry/config"
	"github.com/cbthost/voter-registry/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect voter lifecycle events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print voter events from the configured broker as JSON lines",
	Long: `Print voter events published from now on as JSON lines. The command reads
from its own temporary queue or subscription, so events are not taken away
from other consumers of the channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := mq.NewBackend(ctx, cfg.Events)
		if err != nil {
			return fmt.Errorf("connect message backend: %w", err)
		}
		publisher := mq.NewPublisher(backend, cfg.Events.Channel)
		defer publisher.Close()

		logger.Info("tailing voter events", "channel", cfg.Events.Channel, "backend", cfg.Events.Backend)
		enc := json.NewEncoder(cmd.OutOrStdout())
		err = publisher.Tail(ctx, func(_ context.Context, event mq.VoterEvent) error {
			return enc.Encode(event)
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}

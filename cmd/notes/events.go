package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stoic-notes/notes/broker"
	"stoic-notes/notes/models"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print note events published on NATS",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.NATSURL == "" {
			return errors.New("NATS_URL is not set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return broker.Subscribe(ctx, cfg.NATSURL, cfg.EventsSubject, logger, func(_ context.Context, msg broker.Message, event models.Event) error {
			logger.Info("Note event",
				zap.String("subject", msg.Subject),
				zap.String("event", event.Event),
				zap.String("actor_id", event.ActorID),
				zap.Time("timestamp", event.Timestamp),
				zap.ByteString("data", event.Data),
			)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

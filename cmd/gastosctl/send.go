package main

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/log"
)

func sendCmd(a *app) *cobra.Command {
	var sender string
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Publish a chat message to the broker",
		Long: `Publish a message on the inbound chat queue, as a chat integration
would. gastos-worker answers it on the reply queue.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}

			ctx := cmd.Context()
			client := amqp.NewClient(amqp.Config{
				URL:            cfg.AMQPURL,
				Exchange:       cfg.AMQPExchange,
				InboundQueue:   cfg.AMQPInboundQueue,
				ReplyQueue:     cfg.AMQPReplyQueue,
				Prefetch:       cfg.AMQPPrefetch,
				MaxDialElapsed: 15 * time.Second,
			}, a.logger.WithComponent(log.ComponentAMQP).Slog())
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Close()

			msg := amqp.ChatMessage{
				ID:        uuid.NewString(),
				From:      sender,
				Text:      strings.Join(args, " "),
				Timestamp: time.Now().UTC(),
			}
			if err := client.PublishChat(ctx, msg); err != nil {
				return err
			}
			cmd.Println(msg.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sender, "from", "gastosctl", "sender recorded on the message")
	return cmd
}

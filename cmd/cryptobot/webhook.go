package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cryptobot/internal/config"
	"cryptobot/internal/viber"

	"github.com/spf13/cobra"
)

func registerWebhookCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "register-webhook [public-url]",
		Short: "Point Viber at this bot's public webhook URL",
		Long: `Subscribes the given public HTTPS URL to Viber webhook deliveries
for all event types the bot handles. With --remove, unsubscribes instead.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if remove {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			client := viber.NewClient(viber.Config{
				Token:   cfg.ViberToken,
				Timeout: 15 * time.Second,
				Logger:  logger,
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			defer cancel()

			if remove {
				if err := client.RemoveWebhook(ctx); err != nil {
					return err
				}
				fmt.Println("Webhook removed.")
				return nil
			}

			url := args[0] + cfg.WebhookPath
			if err := client.SetWebhook(ctx, url); err != nil {
				return err
			}
			fmt.Printf("Webhook registered: %s\n", url)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "unsubscribe the current webhook")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cryptobot/internal/config"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a report to stdout without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			menu, err := config.LoadMenuSpec(cfg.MenuFile)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			deps, err := buildBot(cfg, menu, logger)
			if err != nil {
				return err
			}
			defer deps.audit.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			var text string
			if full {
				text, err = deps.bot.BuildDetail(ctx)
			} else {
				text, err = deps.bot.BuildSummary(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "render the unfiltered detail report")
	return cmd
}

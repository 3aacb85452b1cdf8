package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cryptobot/internal/config"
	"cryptobot/internal/store"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks against the configured vendors",
		Long: `Verifies the environment configuration, the Notion database
connection, and the audit database. Reports pass/fail per check.`,
		RunE: runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("cryptobot doctor v%s\n", version)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	passed, failed := 0, 0

	cfg, err := config.Load()
	if err != nil {
		printFail("Configuration", err.Error())
		fmt.Printf("\n0 passed, 1 failed\n")
		return nil
	}
	printPass("Configuration", "environment valid")
	passed++

	if len(cfg.AuthorizedUserIDs) == 0 {
		printWarn("Allow-list", "empty: nobody is authorized")
	} else {
		printPass("Allow-list", fmt.Sprintf("%d sender(s)", len(cfg.AuthorizedUserIDs)))
		passed++
	}

	menu, err := config.LoadMenuSpec(cfg.MenuFile)
	if err != nil {
		printFail("Menu spec", err.Error())
		failed++
	} else {
		printPass("Menu spec", fmt.Sprintf("%d menus, %d phrases", len(menu.Menus), len(menu.Phrases)))
		passed++
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	deps, err := buildBot(cfg, menu, logger)
	if err != nil {
		printFail("Components", err.Error())
		fmt.Printf("\n%d passed, %d failed\n", passed, failed+1)
		return nil
	}
	defer deps.audit.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()
	if err := deps.notion.CheckConnection(ctx); err != nil {
		printFail("Notion database", err.Error())
		failed++
	} else {
		printPass("Notion database", "reachable")
		passed++
	}

	if cfg.OpenAIAPIKey == "" {
		printWarn("AI analysis", "not configured (OPENAI_API_KEY empty)")
	} else {
		printPass("AI analysis", "configured, model "+cfg.OpenAIModel)
		passed++
	}

	if deps.audit == nil {
		printWarn("Audit log", "disabled (AUDIT_DB_PATH empty)")
	} else {
		entries, err := deps.audit.Recent(ctx, 5)
		if err != nil {
			printFail("Audit log", err.Error())
			failed++
		} else {
			printPass("Audit log", fmt.Sprintf("open, %d recent entries", len(entries)))
			passed++
			printRecent(entries)
		}
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	return nil
}

func printRecent(entries []store.Entry) {
	for _, e := range entries {
		fmt.Printf("     %s  %-20s %s %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Action, e.Detail)
	}
}

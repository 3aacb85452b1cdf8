package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"cryptobot/internal/ai"
	"cryptobot/internal/bot"
	"cryptobot/internal/broadcast"
	"cryptobot/internal/config"
	"cryptobot/internal/metrics"
	"cryptobot/internal/notion"
	"cryptobot/internal/report"
	"cryptobot/internal/server"
	"cryptobot/internal/store"
	"cryptobot/internal/viber"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "cryptobot",
		Short: "Private Viber bot bridging a Notion portfolio database",
		Long: `cryptobot serves a Viber webhook, fetches portfolio records from a
Notion database, and renders them as summary, detail, or AI-assisted reports.
All configuration comes from the process environment.`,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(registerWebhookCmd())
	root.AddCommand(reportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and the broadcast loop",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	logger.Info("cryptobot starting", "version", version, "port", cfg.Port)

	menu, err := config.LoadMenuSpec(cfg.MenuFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildBot(cfg, menu, logger)
	if err != nil {
		return err
	}
	defer deps.audit.Close()

	srv := server.New(server.Config{
		Port:    cfg.Port,
		Path:    cfg.WebhookPath,
		Metrics: deps.metrics,
		Logger:  logger.With("component", "server"),
	}, deps.bot)

	caster := broadcast.New(broadcast.Config{
		Interval:  cfg.BroadcastInterval,
		Recipient: adminID(cfg),
		Timeout:   cfg.RequestTimeout,
		Logger:    logger.With("component", "broadcast"),
	}, deps.viber, deps.bot.BuildSummary)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		caster.Start(ctx)
	}()

	err = srv.Start(ctx)
	wg.Wait()
	return err
}

// botDeps bundles what serve and the auxiliary commands construct.
type botDeps struct {
	bot     *bot.Bot
	viber   *viber.Client
	notion  *notion.Client
	audit   *store.AuditStore
	metrics *metrics.Collector
}

func buildBot(cfg *config.Config, menu config.MenuSpec, logger *slog.Logger) (*botDeps, error) {
	viberClient := viber.NewClient(viber.Config{
		Token:   cfg.ViberToken,
		Timeout: cfg.RequestTimeout,
		Logger:  logger.With("component", "viber"),
	})
	notionClient := notion.NewClient(notion.Config{
		Token:      cfg.NotionToken,
		DatabaseID: cfg.NotionDatabaseID,
		Timeout:    cfg.RequestTimeout,
		Logger:     logger.With("component", "notion"),
	})

	var summarizer *ai.Summarizer
	if cfg.OpenAIAPIKey != "" {
		summarizer = ai.NewSummarizer(ai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			APIBase: cfg.OpenAIAPIBase,
			Model:   cfg.OpenAIModel,
			Logger:  logger.With("component", "ai"),
		})
	}

	var audit *store.AuditStore
	if cfg.AuditDBPath != "" {
		var err error
		audit, err = store.NewAuditStore(cfg.AuditDBPath, logger.With("component", "audit"))
		if err != nil {
			return nil, err
		}
	}

	mc := metrics.NewCollector()
	b := bot.New(bot.Options{
		Sender:     viberClient,
		Source:     notionClient,
		Summarizer: summarizer,
		Allow:      bot.NewAllowList(cfg.AuthorizedUserIDs),
		Menu:       menu,
		Mapping:    mappingFromSpec(menu),
		Audit:      audit,
		Metrics:    mc,
		Logger:     logger.With("component", "bot"),
	})

	return &botDeps{bot: b, viber: viberClient, notion: notionClient, audit: audit, metrics: mc}, nil
}

// mappingFromSpec builds the property mapping, falling back to the defaults
// for keys the menu file does not override.
func mappingFromSpec(menu config.MenuSpec) report.Mapping {
	m := report.DefaultMapping()
	props := menu.Properties
	if props == nil {
		return m
	}
	set := func(dst *string, key string) {
		if v, ok := props[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&m.Title, "title")
	set(&m.CurrentProfit, "currentProfit")
	set(&m.Capitalization, "capitalization")
	set(&m.Turnover, "turnover")
	set(&m.DepositPct, "depositPct")
	set(&m.AvgPrice, "avgPrice")
	set(&m.CurrentPrice, "currentPrice")
	return m
}

// adminID is the broadcast recipient: the first configured sender, matching
// the original single-admin deployment shape.
func adminID(cfg *config.Config) string {
	for _, id := range cfg.AuthorizedUserIDs {
		if id != "" {
			return id
		}
	}
	return ""
}

func printPass(name, detail string) { fmt.Printf("  ✅ %-22s %s\n", name, detail) }
func printFail(name, detail string) { fmt.Printf("  ❌ %-22s %s\n", name, detail) }
func printWarn(name, detail string) { fmt.Printf("  ⚠️  %-22s %s\n", name, detail) }

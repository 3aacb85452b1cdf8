// Package bot holds the event-dispatch core: the authorization gate, the
// classifier/router over inbound events, and the report actions.
package bot

import (
	"context"
	"encoding/json"
	"log/slog"

	"cryptobot/internal/config"
	"cryptobot/internal/domain"
	"cryptobot/internal/metrics"
	"cryptobot/internal/notion"
	"cryptobot/internal/report"
	"cryptobot/internal/store"
)

// RecordSource fetches raw pages from the data table. Implemented by
// notion.Client; faked in tests.
type RecordSource interface {
	QueryAll(ctx context.Context, filter json.RawMessage) ([]notion.Page, error)
	CheckConnection(ctx context.Context) error
}

// Summarizer produces the optional AI analysis.
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, records []report.AccountRecord) (string, error)
}

// Bot wires the pipeline: gate → route → fetch → normalize → format → send.
// It holds no per-conversation state; menu position lives entirely in the
// action tokens clients echo back.
type Bot struct {
	sender     domain.Sender
	source     RecordSource
	summarizer Summarizer
	allow      *AllowList
	menu       config.MenuSpec
	mapping    report.Mapping
	actions    map[string]actionFunc
	audit      *store.AuditStore
	logger     *slog.Logger

	eventsTotal   *metrics.Counter
	deniedTotal   *metrics.Counter
	reportsTotal  *metrics.Counter
	fetchFailures *metrics.Counter
}

type actionFunc func(ctx context.Context, senderID string)

type Options struct {
	Sender     domain.Sender
	Source     RecordSource
	Summarizer Summarizer
	Allow      *AllowList
	Menu       config.MenuSpec
	Mapping    report.Mapping
	Audit      *store.AuditStore // nil disables auditing
	Metrics    *metrics.Collector
	Logger     *slog.Logger
}

func New(opts Options) *Bot {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector()
	}
	b := &Bot{
		sender:     opts.Sender,
		source:     opts.Source,
		summarizer: opts.Summarizer,
		allow:      opts.Allow,
		menu:       opts.Menu,
		mapping:    opts.Mapping,
		audit:      opts.Audit,
		logger:     opts.Logger,

		eventsTotal:   opts.Metrics.Counter("cryptobot_events_total", "Inbound webhook events dispatched"),
		deniedTotal:   opts.Metrics.Counter("cryptobot_denied_total", "Senders rejected by the allow-list"),
		reportsTotal:  opts.Metrics.Counter("cryptobot_reports_total", "Reports generated"),
		fetchFailures: opts.Metrics.Counter("cryptobot_fetch_failures_total", "Failed data-table fetches"),
	}
	b.actions = b.buildActionTable()
	return b
}

// buildActionTable maps every action token to its handler: one entry per menu
// screen plus the report and service actions. Tokens not present here fall
// through to the phrase table.
func (b *Bot) buildActionTable() map[string]actionFunc {
	actions := make(map[string]actionFunc)

	for id := range b.menu.Menus {
		menuID := id
		actions[menuID] = func(ctx context.Context, senderID string) {
			b.showMenu(ctx, senderID, menuID)
		}
	}
	actions["back_to_main"] = func(ctx context.Context, senderID string) {
		b.showMenu(ctx, senderID, config.RootMenu)
	}
	actions["quick_report"] = b.quickReport
	actions["full_report"] = b.fullReport
	actions["ai_report"] = b.aiReport
	actions["check_notion"] = b.checkNotion

	return actions
}

// HandleEvent is the single entry point per webhook delivery. It never
// returns an error: every failure is converted to a user-facing reply and a
// log entry before it can reach the transport layer.
func (b *Bot) HandleEvent(ctx context.Context, ev domain.InboundEvent) {
	b.eventsTotal.Inc()

	switch ev.Kind {
	case domain.EventText:
		if !b.authorize(ctx, ev.SenderID) {
			return
		}
		b.dispatch(ctx, ev.SenderID, ev.Text)

	case domain.EventConversationStarted:
		if !b.authorize(ctx, ev.SenderID) {
			return
		}
		b.sendKeyboard(ctx, ev.SenderID, b.menu.Welcome, config.RootMenu)

	case domain.EventDeliveryStatus:
		b.logger.Debug("delivery status acknowledged", "event", ev.RawEvent)

	default:
		b.logger.Warn("unknown event ignored", "event", ev.RawEvent)
	}
}

// authorize runs the gate. On rejection it sends the fixed denial, logs, and
// records an audit row; report logic is never reached.
func (b *Bot) authorize(ctx context.Context, senderID string) bool {
	err := b.allow.Check(senderID)
	if err == nil {
		return true
	}
	b.deniedTotal.Inc()
	b.logger.Warn("unauthorized access attempt", "err", err)
	b.audit.Record(ctx, store.Entry{Kind: store.KindUnauthorized, SenderID: senderID, Detail: err.Error()})
	b.reply(ctx, senderID, "❌ Access denied. This bot is private.")
	return false
}

// dispatch routes message text: action tokens first, then the case-insensitive
// phrase table, then the unrecognized-command fallback echoing the input.
func (b *Bot) dispatch(ctx context.Context, senderID, text string) {
	if action, ok := b.actions[text]; ok {
		action(ctx, senderID)
		return
	}
	b.reply(ctx, senderID, b.phraseReply(senderID, text))
}

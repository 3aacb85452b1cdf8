package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"cryptobot/internal/domain"
	"cryptobot/internal/report"
	"cryptobot/internal/store"
)

// maxMessageLen is the Viber text limit; longer reports are split.
const maxMessageLen = 7000

func (b *Bot) showMenu(ctx context.Context, senderID, menuID string) {
	b.sendKeyboard(ctx, senderID, b.menu.Menus[menuID].Title, menuID)
}

func (b *Bot) quickReport(ctx context.Context, senderID string) {
	records, ok := b.fetchRecords(ctx, senderID)
	if !ok {
		return
	}
	b.reportsTotal.Inc()
	b.audit.Record(ctx, store.Entry{Kind: store.KindReport, SenderID: senderID, Action: "quick_report"})
	b.reply(ctx, senderID, report.Summary(records))
}

func (b *Bot) fullReport(ctx context.Context, senderID string) {
	records, ok := b.fetchRecords(ctx, senderID)
	if !ok {
		return
	}
	b.reportsTotal.Inc()
	b.audit.Record(ctx, store.Entry{Kind: store.KindReport, SenderID: senderID, Action: "full_report"})
	b.reply(ctx, senderID, report.Detail(records))
}

func (b *Bot) aiReport(ctx context.Context, senderID string) {
	if b.summarizer == nil || !b.summarizer.Enabled() {
		b.reply(ctx, senderID, "🤖 AI analysis is not configured.")
		return
	}
	records, ok := b.fetchRecords(ctx, senderID)
	if !ok {
		return
	}
	b.reply(ctx, senderID, "🤖 Analyzing the portfolio, one moment...")

	text, err := b.summarizer.Summarize(ctx, records)
	if err != nil {
		b.logger.Error("ai summary failed", "err", err)
		b.reply(ctx, senderID, "❌ AI analysis failed: "+userMessage(err))
		return
	}
	b.reportsTotal.Inc()
	b.audit.Record(ctx, store.Entry{Kind: store.KindReport, SenderID: senderID, Action: "ai_report"})
	b.reply(ctx, senderID, text)
}

func (b *Bot) checkNotion(ctx context.Context, senderID string) {
	if err := b.source.CheckConnection(ctx); err != nil {
		b.logger.Error("notion connection check failed", "err", err)
		b.reply(ctx, senderID, "❌ "+userMessage(err))
		return
	}
	b.reply(ctx, senderID, "✅ Notion database connection OK!")
}

// BuildSummary fetches and renders the summary report without sending it.
// Used by the broadcast loop and the report CLI command.
func (b *Bot) BuildSummary(ctx context.Context) (string, error) {
	pages, err := b.source.QueryAll(ctx, nil)
	if err != nil {
		b.fetchFailures.Inc()
		return "", err
	}
	return report.Summary(report.NormalizeAll(pages, b.mapping)), nil
}

// BuildDetail is BuildSummary's unfiltered counterpart.
func (b *Bot) BuildDetail(ctx context.Context) (string, error) {
	pages, err := b.source.QueryAll(ctx, nil)
	if err != nil {
		b.fetchFailures.Inc()
		return "", err
	}
	return report.Detail(report.NormalizeAll(pages, b.mapping)), nil
}

// fetchRecords runs one fetch attempt and normalizes the batch. On failure it
// reports the cause to the user and returns ok=false; there is no retry and
// no partial result.
func (b *Bot) fetchRecords(ctx context.Context, senderID string) ([]report.AccountRecord, bool) {
	pages, err := b.source.QueryAll(ctx, nil)
	if err != nil {
		b.fetchFailures.Inc()
		b.logger.Error("data fetch failed", "err", err)
		b.audit.Record(ctx, store.Entry{Kind: store.KindError, SenderID: senderID, Detail: err.Error()})
		b.reply(ctx, senderID, "❌ "+userMessage(err))
		return nil, false
	}
	return report.NormalizeAll(pages, b.mapping), true
}

// phraseReply resolves free-form text against the phrase table
// (case-insensitive exact match) with the unrecognized-command fallback.
// The {sender_id} placeholder lets a phrase echo the caller's ID.
func (b *Bot) phraseReply(senderID, text string) string {
	if reply, ok := b.menu.Phrases[strings.ToLower(strings.TrimSpace(text))]; ok {
		return strings.ReplaceAll(reply, "{sender_id}", senderID)
	}
	return "🤔 Unknown command: " + text
}

// userMessage converts a pipeline error to the text shown to the user. The
// 4xx sub-cases get distinct messages because they point at different
// operator mistakes.
func userMessage(err error) string {
	switch status := domain.RemoteStatus(err); {
	case status == 400:
		return "Bad request to the database. Check the database ID and integration permissions."
	case status == 401:
		return "Not authorized. Check the integration token."
	case status == 403:
		return "Access forbidden. Check the integration's access to the database."
	case status == 404:
		return "Database not found. Check the database ID."
	case status != 0:
		return fmt.Sprintf("The remote service returned an error (HTTP %d).", status)
	case errors.Is(err, domain.ErrTransport):
		return "Network error talking to the remote service. Try again later."
	case errors.Is(err, domain.ErrMalformedPayload):
		return "The remote service returned an unexpected response."
	default:
		return "Something went wrong. Try again later."
	}
}

func (b *Bot) sendKeyboard(ctx context.Context, senderID, text, menuID string) {
	menu, ok := b.menu.Menus[menuID]
	if !ok {
		b.logger.Error("menu not defined", "menu", menuID)
		b.reply(ctx, senderID, text)
		return
	}
	kb := domain.Keyboard{}
	for _, btn := range menu.Buttons {
		kb.Buttons = append(kb.Buttons, domain.Button{
			Text:       btn.Text,
			ActionBody: btn.Action,
			Columns:    btn.Columns,
		})
	}
	if err := b.sender.SendKeyboard(ctx, senderID, text, kb); err != nil {
		b.logger.Error("keyboard send failed", "menu", menuID, "err", err)
	}
}

// reply sends text, splitting anything over the vendor limit on line
// boundaries where possible. Send failures are logged, never propagated.
func (b *Bot) reply(ctx context.Context, senderID, text string) {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := b.sender.Send(ctx, senderID, chunk); err != nil {
			b.logger.Error("send failed", "sender", shortID(senderID), "err", err)
			return
		}
	}
}

func splitMessage(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	var chunks []string
	for len(text) > max {
		cut := strings.LastIndex(text[:max], "\n")
		if cut <= 0 {
			// No newline to break on. Back off to a rune boundary so a
			// multi-byte character is never split across chunks.
			cut = max
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// Package broadcast runs the fixed-interval price broadcast, independent of
// the webhook request path. Both paths only read remote services and send
// outbound messages, so they share nothing but the Sender.
package broadcast

import (
	"context"
	"log/slog"
	"time"

	"cryptobot/internal/domain"
)

// ReportFunc builds the broadcast text. Wired to bot.BuildSummary.
type ReportFunc func(ctx context.Context) (string, error)

type Config struct {
	Interval  time.Duration // zero disables the loop
	Recipient string        // Viber ID the broadcast is sent to
	Timeout   time.Duration // per-tick fetch budget
	Logger    *slog.Logger
}

// Broadcaster periodically rebuilds the summary and sends it when it changed.
type Broadcaster struct {
	interval  time.Duration
	recipient string
	timeout   time.Duration
	sender    domain.Sender
	build     ReportFunc
	logger    *slog.Logger

	// last is the last-known summary. Written and read only by the loop
	// goroutine; a plain field, not synchronized state.
	last string
}

func New(cfg Config, sender domain.Sender, build ReportFunc) *Broadcaster {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Broadcaster{
		interval:  cfg.Interval,
		recipient: cfg.Recipient,
		timeout:   cfg.Timeout,
		sender:    sender,
		build:     build,
		logger:    cfg.Logger,
	}
}

// Start blocks until ctx is cancelled. A tick that fails is logged and
// skipped; the next tick starts from scratch.
func (b *Broadcaster) Start(ctx context.Context) {
	if b.interval <= 0 || b.recipient == "" {
		b.logger.Debug("broadcast disabled")
		return
	}

	b.logger.Info("broadcast started", "interval", b.interval, "recipient", shortID(b.recipient))
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("broadcast stopped")
			return
		case <-ticker.C:
			b.tick(ctx)
		}
	}
}

func (b *Broadcaster) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	text, err := b.build(tickCtx)
	if err != nil {
		b.logger.Error("broadcast build failed", "err", err)
		return
	}
	if text == b.last {
		b.logger.Debug("broadcast unchanged, skipping")
		return
	}

	if err := b.sender.Send(tickCtx, b.recipient, text); err != nil {
		b.logger.Error("broadcast send failed", "err", err)
		return
	}
	b.last = text
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

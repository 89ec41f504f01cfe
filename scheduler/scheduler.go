// Package scheduler reruns the scrape on a fixed interval, for keeping the
// data directory fresh without external cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Summary describes one finished scrape run.
type Summary struct {
	Pages       int
	Records     int
	RowsDropped int
	OutputPath  string
}

// RunFunc performs one full scrape and reports how it went.
type RunFunc func(ctx context.Context) (Summary, error)

// Notifier sends run outcomes to a Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

// NewNotifier connects to the Telegram bot API.
func NewNotifier(token string, chatID int64, logger *slog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
		log:    logger,
	}, nil
}

// Notify sends a message; delivery failures are logged, never escalated.
func (n *Notifier) Notify(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn("failed to send telegram notification", "error", err)
	}
}

// Scheduler runs the scrape immediately and then once per interval until
// stopped.
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	notifier *Notifier // nil disables notifications
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scheduler. notifier may be nil.
func New(interval time.Duration, run RunFunc, notifier *Notifier, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		interval: interval,
		run:      run,
		notifier: notifier,
		log:      logger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start starts the scheduler loop in a goroutine.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop cancels the loop and waits for an in-flight run to wind down.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	s.log.Info("starting scheduled scrape", "interval", s.interval)

	summary, err := s.run(s.ctx)
	if err != nil {
		s.log.Error("scheduled scrape failed", "error", err)
		if s.notifier != nil {
			s.notifier.Notify(fmt.Sprintf("Scrape failed: %v", err))
		}
		return
	}

	s.log.Info("scheduled scrape finished",
		"pages", summary.Pages,
		"records", summary.Records,
		"rows_dropped", summary.RowsDropped,
		"output", summary.OutputPath)

	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf(
			"Scrape finished: %d records over %d pages (%d rows dropped)\n%s",
			summary.Records, summary.Pages, summary.RowsDropped, summary.OutputPath))
	}
}

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doge-savings-scraper/scheduler"

	"github.com/spf13/cobra"
)

var watchIntervalHours int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun the scraper on an interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := loadConfig(logger)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		interval := cfg.Watch.IntervalHours
		if cmd.Flags().Changed("interval-hours") {
			interval = watchIntervalHours
		}

		var notifier *scheduler.Notifier
		if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
			notifier, err = scheduler.NewNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
			if err != nil {
				logger.Warn("telegram notifications disabled", "error", err)
			}
		}

		run := func(ctx context.Context) (scheduler.Summary, error) {
			return scrapeOnce(ctx, cfg, logger)
		}

		sched := scheduler.New(time.Duration(interval)*time.Hour, run, notifier, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sched.Start()
		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchIntervalHours, "interval-hours", 24, "hours between scrape runs")
	watchCmd.Flags().StringVar(&runBrowser, "browser", "firefox", "browser to use: firefox or chrome")
	watchCmd.Flags().IntVar(&runLogFreq, "log-freq", 10, "how often to log while scraping, in pages")
	watchCmd.Flags().IntVar(&runMaxRetries, "max-retries", 3, "per-page retry budget")
	watchCmd.Flags().StringVar(&runOutDir, "out-dir", "", "output directory for scrape files")
	rootCmd.AddCommand(watchCmd)
}

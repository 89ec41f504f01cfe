package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"doge-savings-scraper/config"
	"doge-savings-scraper/driver"
	"doge-savings-scraper/models"
	"doge-savings-scraper/output"
	"doge-savings-scraper/scheduler"
	"doge-savings-scraper/scraper"
	"doge-savings-scraper/sheets"
	"doge-savings-scraper/usaspending"

	"github.com/spf13/cobra"
)

var (
	runBrowser    string
	runLogFreq    int
	runMaxRetries int
	runMaxResults int
	runOutDir     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scraper once and write a timestamped CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := loadConfig(logger)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		summary, err := scrapeOnce(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		logger.Info("run complete",
			"pages", summary.Pages,
			"records", summary.Records,
			"rows_dropped", summary.RowsDropped,
			"output", summary.OutputPath)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runBrowser, "browser", "firefox", "browser to use: firefox or chrome")
	runCmd.Flags().IntVar(&runLogFreq, "log-freq", 10, "how often to log while scraping, in pages")
	runCmd.Flags().IntVar(&runMaxRetries, "max-retries", 3, "per-page retry budget")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "only scrape this many results (testing purposes)")
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "output directory for scrape files")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags lets explicitly-set flags override the config file.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("log-freq") {
		cfg.Scraper.LogFreq = runLogFreq
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.Scraper.MaxRetries = runMaxRetries
	}
	if runOutDir != "" {
		cfg.Output.Dir = runOutDir
	}
}

// scrapeOnce performs one full scrape-enrich-write cycle. It is shared by the
// run and watch commands.
func scrapeOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) (scheduler.Summary, error) {
	drv, err := driver.New(runBrowser, cfg.Scraper.Headless && !debugMode)
	if err != nil {
		return scheduler.Summary{}, err
	}
	defer func() {
		if err := drv.Close(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	sess := scraper.NewSession(drv, scraper.Options{
		StartURL:        cfg.Scraper.URL,
		LogFreq:         cfg.Scraper.LogFreq,
		MaxRetries:      cfg.Scraper.MaxRetries,
		MaxResults:      runMaxResults,
		WaitTimeout:     time.Duration(cfg.Scraper.WaitTimeoutSeconds) * time.Second,
		ExhaustedPolicy: scraper.Policy(cfg.Scraper.ExhaustedPolicy),
		Selectors:       cfg.Selectors,
		Agency:          cfg.Scraper.Agency,
	}, logger)

	start := time.Now()
	records, stats, err := sess.Run(ctx)
	if err != nil {
		var exhausted *scraper.ExtractionExhausted
		if errors.As(err, &exhausted) && len(records) > 0 {
			// Abort policy: the partial result still lands on disk before the
			// run reports failure.
			logger.Error("scrape aborted, writing partial results", "error", err)
			if path, werr := output.WriteCSV(cfg.Output.Dir, records, start); werr != nil {
				logger.Error("failed to write partial scrape", "error", werr)
			} else {
				logger.Info("partial scrape written", "path", path, "records", len(records))
			}
		}
		return scheduler.Summary{}, err
	}

	if cfg.USASpending.Enabled {
		client := usaspending.NewClient(cfg.USASpending.BaseURL, logger)
		client.Enrich(ctx, records, cfg.Scraper.LogFreq)
	}

	path, err := output.WriteCSV(cfg.Output.Dir, records, start)
	if err != nil {
		return scheduler.Summary{}, err
	}

	if cfg.Sheets.SpreadsheetURL != "" && cfg.Sheets.CredentialsPath != "" {
		pushToSheets(ctx, cfg, logger, start, records)
	}

	return scheduler.Summary{
		Pages:       stats.Pages,
		Records:     stats.Records,
		RowsDropped: stats.RowsDropped,
		OutputPath:  path,
	}, nil
}

// pushToSheets mirrors a finished scrape into the configured spreadsheet.
// Sheet failures never fail the run; the CSV on disk is the source of truth.
func pushToSheets(ctx context.Context, cfg *config.Config, logger *slog.Logger, start time.Time, records []models.SavingsRecord) {
	writer, err := sheets.NewWriter(ctx, cfg.Sheets.SpreadsheetURL, cfg.Sheets.CredentialsPath)
	if err != nil {
		logger.Warn("sheets sink unavailable", "error", err)
		return
	}

	name := "Scrape_" + start.Format("20060102_150405")
	url, err := writer.AppendRun(ctx, name, records)
	if err != nil {
		logger.Warn("failed to write to Google Sheets", "error", err)
		return
	}
	logger.Info("scrape pushed to Google Sheets", "url", url)
}

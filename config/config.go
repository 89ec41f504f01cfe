package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScraperConfig holds the settings for the scrape session itself.
type ScraperConfig struct {
	URL                string `yaml:"url"`
	Agency             string `yaml:"agency"` // keep only rows for this agency; empty keeps everything
	Headless           bool   `yaml:"headless"`
	WaitTimeoutSeconds int    `yaml:"wait_timeout_seconds"`
	MaxRetries         int    `yaml:"max_retries"`
	LogFreq            int    `yaml:"log_freq"`
	ExhaustedPolicy    string `yaml:"exhausted_policy"` // "abort" or "skip"
}

// Selectors describes where the scraper finds things in the rendered DOM.
// The savings site is a React app without stable ids, so these lean on
// structure and aria labels and may need adjustment when the site changes.
type Selectors struct {
	ViewAllText string `yaml:"view_all_text"` // text of the button that reveals the full table
	Row         string `yaml:"row"`
	Popup       string `yaml:"popup"`
	PopupClose  string `yaml:"popup_close"`
	Next        string `yaml:"next"`
}

// OutputConfig controls where scrape files land.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// USASpendingConfig controls the post-scrape award-id enrichment.
type USASpendingConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// SheetsConfig enables the optional Google Sheets sink when both fields are set.
type SheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
}

// TelegramConfig enables watch-mode notifications when both fields are set.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// WatchConfig controls the repeated-scrape mode.
type WatchConfig struct {
	IntervalHours int `yaml:"interval_hours"`
}

// Config is the complete structure of the config.yaml file.
type Config struct {
	Scraper     ScraperConfig     `yaml:"scraper"`
	Selectors   Selectors         `yaml:"selectors"`
	Output      OutputConfig      `yaml:"output"`
	USASpending USASpendingConfig `yaml:"usaspending"`
	Sheets      SheetsConfig      `yaml:"sheets"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Watch       WatchConfig       `yaml:"watch"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration matching the live doge.gov/savings site.
func Default() *Config {
	return &Config{
		Scraper: ScraperConfig{
			URL:                "https://www.doge.gov/savings",
			Agency:             "CONSUMER FINANCIAL PROTECTION BUREAU",
			Headless:           true,
			WaitTimeoutSeconds: 10,
			MaxRetries:         3,
			LogFreq:            10,
			ExhaustedPolicy:    "abort",
		},
		Selectors: Selectors{
			ViewAllText: "View All Contracts",
			Row:         "table tr",
			Popup:       "div.fixed h3",
			PopupClose:  "div.fixed button:nth-child(2)",
			Next:        "a[aria-label='Next'], button[aria-label='Next']",
		},
		Output: OutputConfig{
			Dir: "data",
		},
		USASpending: USASpendingConfig{
			Enabled: true,
			BaseURL: "https://api.usaspending.gov",
		},
		Watch: WatchConfig{
			IntervalHours: 24,
		},
	}
}

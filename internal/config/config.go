package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is everything a run needs besides credentials. Defaults mirror the
// thresholds the screen has always used; the yaml file only overrides what it
// names.
type Config struct {
	Tickers []string `yaml:"tickers"`

	Thresholds ThresholdConfig `yaml:"thresholds"`
	Selector   SelectorConfig  `yaml:"selector"`
	Screener   ScreenerConfig  `yaml:"screener"`
	Artifacts  ArtifactConfig  `yaml:"artifacts"`
	Schedule   ScheduleConfig  `yaml:"schedule"`
	Server     ServerConfig    `yaml:"server"`
	Email      EmailConfig     `yaml:"email"`
	Trading    TradingConfig   `yaml:"trading"`
}

type ThresholdConfig struct {
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	MaxPE         float64 `yaml:"max_pe"`
	MaxADX        float64 `yaml:"max_adx"`
	// MinPriceForBBSignal gates the RSI+Bollinger entry rule to liquid,
	// higher-priced names.
	MinPriceForBBSignal float64 `yaml:"min_price_for_bb_signal"`
}

type SelectorConfig struct {
	MinDTE             int     `yaml:"min_dte"`
	MaxDTE             int     `yaml:"max_dte"`
	MinBufferPercent   float64 `yaml:"min_buffer_percent"`
	MinIVRank          float64 `yaml:"min_iv_rank"`
	EarningsBufferDays int     `yaml:"earnings_buffer_days"`
}

type ScreenerConfig struct {
	Workers int `yaml:"workers"`
	// HistoryYears is how far back the daily bar fetch reaches.
	HistoryYears int `yaml:"history_years"`
}

type ArtifactConfig struct {
	SignalsPath      string `yaml:"signals_path"`
	SpreadsPath      string `yaml:"spreads_path"`
	PreviousBuysPath string `yaml:"previous_buys_path"`
	AlertLogPath     string `yaml:"alert_log_path"`
}

type ScheduleConfig struct {
	// Cron specs, evaluated in Pacific time.
	MarketOpen string `yaml:"market_open"`
	Hourly     string `yaml:"hourly"`
	Nightly    string `yaml:"nightly"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type EmailConfig struct {
	Region string   `yaml:"region"`
	From   string   `yaml:"from"`
	To     []string `yaml:"to"`
}

type TradingConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	PositionSizeUSD   float64 `yaml:"position_size_usd"`
	TakeProfitPercent float64 `yaml:"take_profit_percent"`
	MaxPositions      int     `yaml:"max_positions"`
}

func Default() *Config {
	return &Config{
		Thresholds: ThresholdConfig{
			RSIOversold:         30,
			RSIOverbought:       70,
			MaxPE:               30,
			MaxADX:              35,
			MinPriceForBBSignal: 100,
		},
		Selector: SelectorConfig{
			MinDTE:             21,
			MaxDTE:             49,
			MinBufferPercent:   10,
			MinIVRank:          40,
			EarningsBufferDays: 7,
		},
		Screener: ScreenerConfig{
			Workers:      8,
			HistoryYears: 2,
		},
		Artifacts: ArtifactConfig{
			SignalsPath:      "data/signals.json",
			SpreadsPath:      "data/spreads.json",
			PreviousBuysPath: "data/sent_buys.json",
			AlertLogPath:     "data/alerts_log.csv",
		},
		Schedule: ScheduleConfig{
			MarketOpen: "30 6 * * 1-5",
			Hourly:     "0 7-13 * * 1-5",
			Nightly:    "0 21 * * 1-5",
		},
		Server: ServerConfig{
			Port: 3009,
		},
		Email: EmailConfig{
			Region: "us-east-1",
		},
		Trading: TradingConfig{
			Endpoint:          "https://paper-api.alpaca.markets",
			PositionSizeUSD:   500,
			TakeProfitPercent: 3,
			MaxPositions:      5,
		},
	}
}

// Load reads a yaml config on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(f, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if len(cfg.Tickers) == 0 {
		return nil, fmt.Errorf("config %s lists no tickers", path)
	}

	return cfg, nil
}

// Secrets holds provider credentials, loaded from a json file outside the
// repo.
type Secrets struct {
	Alpaca AlpacaSecrets `json:"alpaca"`
}

type AlpacaSecrets struct {
	ApiKey    string `json:"apiKey"`
	ApiSecret string `json:"apiSecret"`
}

package domain

import "time"

// The *_str fields below are display copies derived from the numeric fields,
// never the other way around.

type PutEntry struct {
	Strike           float64 `json:"strike"`
	Expiration       string  `json:"expiration"`
	Premium          float64 `json:"premium"`
	DeltaPercent     float64 `json:"delta_percent"`
	PremiumPercent   float64 `json:"premium_percent"`
	MetricSum        float64 `json:"metric_sum"`
	WeeklyAvailable  bool    `json:"weekly_available"`
	MonthlyAvailable bool    `json:"monthly_available"`
}

type BuyEntry struct {
	Ticker         string    `json:"ticker"`
	Company        string    `json:"company"`
	Price          float64   `json:"price"`
	RSI            float64   `json:"rsi"`
	PE             *float64  `json:"pe"`
	DMA50          *float64  `json:"dma50"`
	DMA200         *float64  `json:"dma200"`
	MarketCap      int64     `json:"market_cap"`
	MarketCapStr   string    `json:"market_cap_str"`
	ADX            float64   `json:"adx"`
	TrendDir       string    `json:"trend_dir"`
	TrendRationale string    `json:"trend_rationale"`
	EarningsDate   *string   `json:"earnings_date"`
	RSIBBSignal    bool      `json:"rsi_bb_signal"`
	Score          float64   `json:"score"`
	Tier           int       `json:"tier"`
	Put            *PutEntry `json:"put"`
	// PutNote explains a nil put ("No option chain data available",
	// "earnings within 7 days", ...). Empty when a put is present.
	PutNote string `json:"put_note,omitempty"`
}

type SellEntry struct {
	Ticker       string   `json:"ticker"`
	Company      string   `json:"company"`
	Price        float64  `json:"price"`
	RSI          float64  `json:"rsi"`
	PE           *float64 `json:"pe"`
	MarketCap    int64    `json:"market_cap"`
	MarketCapStr string   `json:"market_cap_str"`
	EarningsDate *string  `json:"earnings_date"`
}

type UniverseEntry struct {
	Ticker       string   `json:"ticker"`
	Company      string   `json:"company"`
	Score        float64  `json:"score"`
	Tier         int      `json:"tier"`
	PriceStr     string   `json:"price_str"`
	RSIStr       string   `json:"rsi_str"`
	PEStr        string   `json:"pe_str"`
	MarketCapStr string   `json:"market_cap_str"`
	DMA50Str     string   `json:"dma50_str"`
	DMA200Str    string   `json:"dma200_str"`
	PctDrop      *float64 `json:"pct_drop"`
	Why          string   `json:"why"`
}

// RunArtifact is the published result of one screening run. A run replaces
// the prior artifact wholesale; consumers never see a partial write.
type RunArtifact struct {
	RunID         string          `json:"run_id"`
	GeneratedAtPT string          `json:"generated_at_pt"`
	Buys          []BuyEntry      `json:"buys"`
	Sells         []SellEntry     `json:"sells"`
	All           []UniverseEntry `json:"all"`
}

// SpreadEntry is one row of the spread-candidate artifact.
type SpreadEntry struct {
	Ticker    string  `json:"ticker"`
	Company   string  `json:"company"`
	McapB     float64 `json:"mcap"` // billions, 2dp
	Strategy  string  `json:"strategy"`
	Price     float64 `json:"price"`
	RSI       float64 `json:"rsi"`
	ADX       float64 `json:"adx"`
	Direction string  `json:"type"`
	IsSqueeze bool    `json:"is_squeeze"`
	Reasoning string  `json:"reasoning"`
	IsNew     bool    `json:"is_new"`
}

// ExpirationDisplayLayout renders expirations the way the buys table shows
// them, e.g. "Mar 21, 2025".
const ExpirationDisplayLayout = "Jan 02, 2006"

// GeneratedAtLayout is the artifact timestamp layout, stamped in Pacific
// time.
const GeneratedAtLayout = "01-02-2006 15:04"

func FormatExpiration(t time.Time) string {
	return t.Format(ExpirationDisplayLayout)
}

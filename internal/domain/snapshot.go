package domain

import (
	"fmt"
	"time"
)

// TickerSnapshot is one ticker's state for a single evaluation run. It is
// built fresh from live data every run and never mutated afterwards.
type TickerSnapshot struct {
	Ticker    string
	Company   string
	Price     float64
	PrevClose float64

	RSI     float64
	DMA50   *float64
	DMA200  *float64
	ADX     float64
	BBLower float64
	BBUpper float64
	KCLower float64
	KCUpper float64

	PlusDI  float64
	MinusDI float64

	MACD       float64
	MACDSignal float64
	// MACDHist holds the last three histogram values, oldest first.
	MACDHist []float64

	// DMA200Slope is the average daily change of the slow average over the
	// last ten sessions; nil with short history.
	DMA200Slope *float64

	// IVRank is the 0-100 volatility-rank proxy; nil when history is too
	// short to rank.
	IVRank *float64

	PE           *float64
	MarketCap    int64
	EarningsDate *time.Time
}

// IsSqueeze reports whether the Bollinger bands sit inside the Keltner
// channel. It compares band widths only, so it is symmetric with respect to
// price direction.
func (s TickerSnapshot) IsSqueeze() bool {
	return (s.BBUpper - s.BBLower) < (s.KCUpper - s.KCLower)
}

type SignalType string

const (
	SignalBuy           SignalType = "BUY"
	SignalSell          SignalType = "SELL"
	SignalSpreadBullish SignalType = "SPREAD_BULLISH"
	SignalSpreadBearish SignalType = "SPREAD_BEARISH"
	SignalNone          SignalType = ""
)

// SpreadCandidate tags a ticker for the mean-reversion spread list. Squeezed
// tickers never produce one.
type SpreadCandidate struct {
	Strategy  string // e.g. "Bull Call (Debit)"
	Direction string // "bullish" or "bearish"
	Reasoning string
}

// Classification is the derived signal for one snapshot. The spread candidacy
// is carried independently of the main Buy/Sell signal: a ticker can be
// reported under buys and still appear in the spread list.
type Classification struct {
	Signal    SignalType
	Rationale string

	// RSIBBSignal marks the newer RSI + lower-Bollinger entry rule. It is a
	// tag on top of the Buy signal, not a competing classification.
	RSIBBSignal bool

	TrendDir       string // "bullish" or "bearish"
	TrendRationale string

	Score float64 // composite 0-100 ranking score
	Why   string
	Tier  int // 1 = P/E and RSI both pass, 2 = exactly one, 3 = neither

	PctDrop *float64 // drop vs previous close, positive means price fell

	Spread *SpreadCandidate
}

// PutRecommendation is the cash-secured-put pick for a Buy ticker. It is the
// argmax of MetricSum over every candidate (strike, expiration) pair that
// passed the selector's constraints.
//
// PremiumPercent divides by strike, not by spot; the spot-denominated
// variants of this metric are considered superseded.
type PutRecommendation struct {
	Strike     float64
	Expiration time.Time
	Premium    float64

	DeltaPercent   float64
	PremiumPercent float64
	MetricSum      float64

	WeeklyAvailable  bool
	MonthlyAvailable bool
}

// Fundamentals is what the fundamentals provider returns for one ticker.
// PE and EarningsDate are nil when the provider has no value; that is common
// for unprofitable companies and must not be treated as an error.
type Fundamentals struct {
	Symbol       string
	Company      string
	Price        float64
	PrevClose    float64
	PE           *float64
	ForwardPE    *float64
	MarketCap    int64
	EarningsDate *time.Time
}

// FormatMarketCap renders a market cap for display, e.g. "1.5B" or "730.2M".
func FormatMarketCap(mcap int64) string {
	switch {
	case mcap <= 0:
		return "N/A"
	case mcap >= 1e9:
		return fmt.Sprintf("%.1fB", float64(mcap)/1e9)
	case mcap >= 1e6:
		return fmt.Sprintf("%.1fM", float64(mcap)/1e6)
	default:
		return fmt.Sprintf("%d", mcap)
	}
}

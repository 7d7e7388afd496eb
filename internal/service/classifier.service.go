package service

import (
	"fmt"
	"strings"

	"stockhome/internal/config"
	"stockhome/internal/domain"
)

// composite score weights
const (
	wTrend    = 40.0
	wRSI      = 25.0
	wMACD     = 25.0
	wDistance = 10.0
)

type ClassifierService interface {
	Classify(snapshot *domain.TickerSnapshot) *domain.Classification
}

type classifierServiceHandler struct {
	thresholds config.ThresholdConfig
}

func NewClassifierService(thresholds config.ThresholdConfig) ClassifierService {
	return classifierServiceHandler{thresholds: thresholds}
}

func (h classifierServiceHandler) Classify(s *domain.TickerSnapshot) *domain.Classification {
	t := h.thresholds

	out := &domain.Classification{
		Signal:   domain.SignalNone,
		TrendDir: trendDir(s),
	}

	if s.PrevClose > 0 {
		drop := -(s.Price - s.PrevClose) / s.PrevClose * 100
		out.PctDrop = &drop
	}

	out.TrendRationale = trendRationale(s)
	out.Score, out.Why = compositeScore(s, t)
	out.Tier = tier(s, t)

	squeeze := s.IsSqueeze()

	// RSI + lower-band entry, tagged on top of the plain buy signal
	if s.Price > t.MinPriceForBBSignal && s.Price <= s.BBLower && s.RSI < t.RSIOversold && !squeeze {
		out.RSIBBSignal = true
	}

	peOK := s.PE == nil || *s.PE <= t.MaxPE

	switch {
	case s.RSI <= t.RSIOversold && peOK:
		out.Signal = domain.SignalBuy
		out.Rationale = buyRationale(s, t)
	case out.RSIBBSignal:
		out.Signal = domain.SignalBuy
		out.Rationale = fmt.Sprintf("RSI=%.1f with close at/below lower band %.2f", s.RSI, s.BBLower)
	case s.RSI > t.RSIOverbought:
		out.Signal = domain.SignalSell
		out.Rationale = fmt.Sprintf("RSI=%.1f > %.0f", s.RSI, t.RSIOverbought)
	}

	if !squeeze {
		out.Spread = spreadCandidate(s, t)
	}
	if out.Signal == domain.SignalNone && out.Spread != nil {
		if out.Spread.Direction == "bullish" {
			out.Signal = domain.SignalSpreadBullish
		} else {
			out.Signal = domain.SignalSpreadBearish
		}
		out.Rationale = out.Spread.Reasoning
	}

	return out
}

func buyRationale(s *domain.TickerSnapshot, t config.ThresholdConfig) string {
	peStr := "P/E unavailable"
	if s.PE != nil {
		peStr = fmt.Sprintf("P/E=%.1f <= %.0f", *s.PE, t.MaxPE)
	}
	return fmt.Sprintf("RSI=%.1f <= %.0f, %s", s.RSI, t.RSIOversold, peStr)
}

// spreadCandidate checks the mean-reversion band-touch rules. Callers must
// exclude squeezed tickers before calling.
func spreadCandidate(s *domain.TickerSnapshot, t config.ThresholdConfig) *domain.SpreadCandidate {
	if s.Price >= s.BBUpper && s.RSI > 60 && s.ADX < t.MaxADX && s.BBUpper > s.KCUpper {
		strategy := "Bear Call (Credit)"
		if s.RSI > t.RSIOverbought {
			strategy = "Bear Put (Debit)"
		}
		return &domain.SpreadCandidate{
			Strategy:  strategy,
			Direction: "bearish",
			Reasoning: fmt.Sprintf("Close %.2f at/above upper band %.2f, RSI=%.1f, ADX=%.1f", s.Price, s.BBUpper, s.RSI, s.ADX),
		}
	}
	if s.Price <= s.BBLower && s.RSI < 40 && s.ADX < t.MaxADX && s.BBLower < s.KCLower {
		strategy := "Bull Put (Credit)"
		if s.RSI < t.RSIOversold {
			strategy = "Bull Call (Debit)"
		}
		return &domain.SpreadCandidate{
			Strategy:  strategy,
			Direction: "bullish",
			Reasoning: fmt.Sprintf("Close %.2f at/below lower band %.2f, RSI=%.1f, ADX=%.1f", s.Price, s.BBLower, s.RSI, s.ADX),
		}
	}
	return nil
}

func trendDir(s *domain.TickerSnapshot) string {
	if s.DMA50 != nil && s.Price > *s.DMA50 {
		return "bullish"
	}
	return "bearish"
}

func trendRationale(s *domain.TickerSnapshot) string {
	direction := "Bearish"
	if s.PlusDI > s.MinusDI {
		direction = "Bullish"
	}
	strength := "Weak/Sideways"
	if s.ADX > 25 {
		strength = "Strong"
	}
	return fmt.Sprintf("%s %s Trend (ADX: %.1f)", strength, direction, s.ADX)
}

func tier(s *domain.TickerSnapshot, t config.ThresholdConfig) int {
	peOK := s.PE != nil && *s.PE <= t.MaxPE
	rsiOK := s.RSI <= t.RSIOversold
	switch {
	case peOK && rsiOK:
		return 1
	case peOK || rsiOK:
		return 2
	default:
		return 3
	}
}

// compositeScore blends trend, RSI, MACD and distance-from-average sub-scores
// into a 0-100 ranking value, with a short reason string for display.
func compositeScore(s *domain.TickerSnapshot, t config.ThresholdConfig) (float64, string) {
	reasons := []string{}

	sTrend, rTrend := scoreTrend(s)
	sRSI, rRSI := scoreRSI(s.RSI, t)
	sMACD, rMACD := scoreMACD(s.MACD, s.MACDSignal, s.MACDHist)
	sDist, rDist := scoreDistance(s)

	for _, r := range [][]string{rTrend, rRSI, rMACD, rDist} {
		if len(r) > 0 {
			reasons = append(reasons, r[0])
		}
	}

	score := wTrend*sTrend + wRSI*sRSI + wMACD*sMACD + wDistance*sDist
	return clamp(score, 0, 100), strings.Join(reasons, " | ")
}

func scoreTrend(s *domain.TickerSnapshot) (float64, []string) {
	reasons := []string{}
	score := 0.0
	if s.DMA200 != nil && s.Price > *s.DMA200 {
		score += 0.55
		reasons = append(reasons, "Above slow SMA")
	} else {
		reasons = append(reasons, "Below slow SMA")
	}
	if s.DMA50 != nil && s.Price > *s.DMA50 {
		score += 0.25
		reasons = append(reasons, "Above fast SMA")
	}
	if s.DMA200Slope != nil && *s.DMA200Slope > 0 {
		score += 0.20
		reasons = append(reasons, "Uptrending")
	}
	return clamp(score, 0, 1), reasons
}

func scoreRSI(rsi float64, t config.ThresholdConfig) (float64, []string) {
	reasons := []string{}
	score := 0.35
	if rsi >= 50 {
		score = 0.60
	}
	switch {
	case rsi >= t.RSIOverbought:
		score -= 0.15
		reasons = append(reasons, "Overbought")
	case rsi <= t.RSIOversold:
		score += 0.15
		reasons = append(reasons, "Oversold")
	default:
		reasons = append(reasons, fmt.Sprintf("RSI %.0f", rsi))
	}
	return clamp(score, 0, 1), reasons
}

func scoreMACD(macd, signal float64, hist []float64) (float64, []string) {
	reasons := []string{}
	score := 0.35
	if macd > signal {
		score = 0.60
		reasons = append(reasons, "Bullish MACD")
	} else {
		reasons = append(reasons, "Bearish MACD")
	}
	if len(hist) >= 3 {
		h2, h1, h0 := hist[len(hist)-3], hist[len(hist)-2], hist[len(hist)-1]
		if h0 > h1 && h1 > h2 {
			score += 0.15
			reasons = append(reasons, "Mom. Rising")
		} else if h0 < h1 && h1 < h2 {
			score -= 0.10
			reasons = append(reasons, "Mom. Falling")
		}
	}
	return clamp(score, 0, 1), reasons
}

func scoreDistance(s *domain.TickerSnapshot) (float64, []string) {
	if s.DMA200 == nil || *s.DMA200 <= 0 {
		return 0.5, nil
	}
	d := (s.Price - *s.DMA200) / *s.DMA200
	switch {
	case d >= -0.03 && d <= 0.05:
		return 0.85, []string{"Near Support"}
	case d > 0.05:
		return 0.60, []string{fmt.Sprintf("Extended (+%.0f%%)", d*100)}
	default:
		return 0.45, nil
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

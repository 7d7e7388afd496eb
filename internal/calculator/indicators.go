package calculator

import (
	"fmt"
	"math"
	"time"

	"stockhome/internal/domain"

	"github.com/markcheno/go-talib"
	"github.com/montanaflynn/stats"
)

const (
	// MinBars is the warm-up floor: the 20-day bands and ADX(14) both need
	// runway before the last bar is trustworthy.
	MinBars = 60

	rsiPeriod  = 14
	adxPeriod  = 14
	bandPeriod = 20
	bandWidth  = 2.0

	hvWindow     = 20
	ivRankWindow = 252
	minHVSamples = 60
)

// IndicatorSet is every indicator value as of the most recent bar.
type IndicatorSet struct {
	LastClose time.Time
	Close     float64
	PrevClose float64

	RSI     float64
	DMA50   *float64
	DMA200  *float64
	ADX     float64
	PlusDI  float64
	MinusDI float64

	BBLower float64
	BBUpper float64
	KCLower float64
	KCUpper float64

	MACD       float64
	MACDSignal float64
	// MACDHist holds the last three histogram values, oldest first, for
	// momentum-direction scoring.
	MACDHist []float64

	// DMA200Slope is the average daily change of the 200-day SMA over the
	// last 10 sessions; nil when the SMA itself is nil.
	DMA200Slope *float64

	// IVRank is the 0-100 rank of annualized 20-day volatility within its
	// trailing one-year range; nil with short history.
	IVRank *float64
}

// Compute derives the full indicator set from an ordered daily bar series.
// It errors when the history is too short rather than returning partial
// values; callers skip the ticker for the run.
func Compute(bars []domain.Bar) (*IndicatorSet, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("insufficient history: %d bars, need %d", len(bars), MinBars)
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
		highs[i] = b.High.InexactFloat64()
		lows[i] = b.Low.InexactFloat64()
	}
	last := len(closes) - 1

	out := &IndicatorSet{
		LastClose: bars[last].Date,
		Close:     closes[last],
		PrevClose: closes[last-1],
	}

	rsi := talib.Rsi(closes, rsiPeriod)
	out.RSI = rsi[last]

	if len(closes) >= 50 {
		sma := talib.Sma(closes, 50)
		v := sma[last]
		out.DMA50 = &v
	}
	if len(closes) >= 200 {
		sma := talib.Sma(closes, 200)
		v := sma[last]
		out.DMA200 = &v
		if last >= 210 {
			slope := (sma[last] - sma[last-10]) / 10
			out.DMA200Slope = &slope
		}
	}

	out.ADX = talib.Adx(highs, lows, closes, adxPeriod)[last]
	out.PlusDI = talib.PlusDI(highs, lows, closes, adxPeriod)[last]
	out.MinusDI = talib.MinusDI(highs, lows, closes, adxPeriod)[last]

	bbUpper, _, bbLower := talib.BBands(closes, bandPeriod, bandWidth, bandWidth, talib.SMA)
	out.BBUpper = bbUpper[last]
	out.BBLower = bbLower[last]

	ema := talib.Ema(closes, bandPeriod)
	atr := talib.Atr(highs, lows, closes, bandPeriod)
	out.KCUpper = ema[last] + bandWidth*atr[last]
	out.KCLower = ema[last] - bandWidth*atr[last]

	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	out.MACD = macd[last]
	out.MACDSignal = signal[last]
	out.MACDHist = hist[len(hist)-3:]

	out.IVRank = ivRankProxy(closes)

	return out, nil
}

// ivRankProxy ranks current 20-day historical volatility (annualized)
// against its trailing one-year range, as a 0-100 value. It stands in for a
// true implied-volatility rank, which the quote provider does not serve
// historically.
func ivRankProxy(closes []float64) *float64 {
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return nil
		}
		rets = append(rets, math.Log(closes[i]/closes[i-1]))
	}

	hvs := make([]float64, 0, len(rets))
	for i := hvWindow; i <= len(rets); i++ {
		sd, err := stats.StandardDeviationSample(rets[i-hvWindow : i])
		if err != nil {
			return nil
		}
		hvs = append(hvs, sd*math.Sqrt(252))
	}
	if len(hvs) < minHVSamples {
		return nil
	}
	if len(hvs) > ivRankWindow {
		hvs = hvs[len(hvs)-ivRankWindow:]
	}

	cur := hvs[len(hvs)-1]
	lo, hi := hvs[0], hvs[0]
	for _, v := range hvs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return nil
	}
	rank := 100 * (cur - lo) / (hi - lo)
	return &rank
}

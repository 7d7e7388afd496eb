package service

import (
	"testing"

	"stockhome/internal/config"
	"stockhome/internal/domain"

	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

// baseSnapshot is a neutral mid-range ticker that triggers nothing.
func baseSnapshot() *domain.TickerSnapshot {
	return &domain.TickerSnapshot{
		Ticker:    "TEST",
		Price:     100,
		PrevClose: 100,
		RSI:       50,
		DMA50:     fp(98),
		DMA200:    fp(95),
		ADX:       20,
		BBLower:   92,
		BBUpper:   108,
		KCLower:   94,
		KCUpper:   106,
		PE:        fp(20),
		MACDHist:  []float64{0.1, 0.1, 0.1},
	}
}

func newTestClassifier() ClassifierService {
	return NewClassifierService(config.Default().Thresholds)
}

func TestClassify_Buy(t *testing.T) {
	svc := newTestClassifier()

	t.Run("oversold with acceptable pe", func(t *testing.T) {
		s := baseSnapshot()
		s.RSI = 28.1
		s.PE = fp(21.4)
		c := svc.Classify(s)
		require.Equal(t, domain.SignalBuy, c.Signal)
		require.Contains(t, c.Rationale, "RSI=28.1")
		require.Equal(t, 1, c.Tier)
	})

	t.Run("missing pe does not block buy", func(t *testing.T) {
		s := baseSnapshot()
		s.RSI = 25
		s.PE = nil
		c := svc.Classify(s)
		require.Equal(t, domain.SignalBuy, c.Signal)
		require.Contains(t, c.Rationale, "P/E unavailable")
	})

	t.Run("high pe blocks the plain buy rule", func(t *testing.T) {
		s := baseSnapshot()
		s.RSI = 25
		s.PE = fp(80)
		c := svc.Classify(s)
		require.NotEqual(t, domain.SignalBuy, c.Signal)
	})

	t.Run("boundary rsi 30 still buys", func(t *testing.T) {
		s := baseSnapshot()
		s.RSI = 30
		c := svc.Classify(s)
		require.Equal(t, domain.SignalBuy, c.Signal)
	})
}

func TestClassify_RSIBBSignal(t *testing.T) {
	svc := newTestClassifier()

	t.Run("tagged when price pierces lower band", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 101
		s.PrevClose = 110
		s.BBLower = 102
		s.BBUpper = 120
		s.RSI = 27
		s.PE = fp(80) // plain rule blocked, bb rule still fires
		c := svc.Classify(s)
		require.True(t, c.RSIBBSignal)
		require.Equal(t, domain.SignalBuy, c.Signal)
	})

	t.Run("cheap tickers never tagged", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 50
		s.BBLower = 55
		s.RSI = 27
		c := svc.Classify(s)
		require.False(t, c.RSIBBSignal)
	})

	t.Run("squeeze suppresses the tag", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 101
		s.BBLower = 102
		s.BBUpper = 104 // narrow bands inside the channel
		s.RSI = 27
		c := svc.Classify(s)
		require.False(t, c.RSIBBSignal)
	})
}

func TestClassify_Sell(t *testing.T) {
	svc := newTestClassifier()
	s := baseSnapshot()
	s.RSI = 72.3
	c := svc.Classify(s)
	require.Equal(t, domain.SignalSell, c.Signal)
	require.Contains(t, c.Rationale, "RSI=72.3 > 70")
}

func TestClassify_Spreads(t *testing.T) {
	svc := newTestClassifier()

	t.Run("bearish credit spread", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 109
		s.RSI = 65
		s.ADX = 20
		c := svc.Classify(s)
		require.NotNil(t, c.Spread)
		require.Equal(t, "bearish", c.Spread.Direction)
		require.Equal(t, "Bear Call (Credit)", c.Spread.Strategy)
		require.Equal(t, domain.SignalSpreadBearish, c.Signal)
	})

	t.Run("bearish debit when overbought", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 109
		s.RSI = 75
		c := svc.Classify(s)
		require.NotNil(t, c.Spread)
		require.Equal(t, "Bear Put (Debit)", c.Spread.Strategy)
		// overbought also trips the sell rule, which wins the main signal
		require.Equal(t, domain.SignalSell, c.Signal)
	})

	t.Run("bullish put credit spread", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 91
		s.RSI = 35
		s.PE = fp(80)
		c := svc.Classify(s)
		require.NotNil(t, c.Spread)
		require.Equal(t, "bullish", c.Spread.Direction)
		require.Equal(t, "Bull Put (Credit)", c.Spread.Strategy)
		require.Equal(t, domain.SignalSpreadBullish, c.Signal)
	})

	t.Run("bullish call debit when oversold", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 91
		s.RSI = 25
		s.PE = fp(80)
		c := svc.Classify(s)
		require.NotNil(t, c.Spread)
		require.Equal(t, "Bull Call (Debit)", c.Spread.Strategy)
	})

	t.Run("strong trend blocks spreads", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 109
		s.RSI = 65
		s.ADX = 40
		c := svc.Classify(s)
		require.Nil(t, c.Spread)
	})

	t.Run("squeeze blocks spreads", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 109
		s.RSI = 65
		s.BBLower = 96
		s.BBUpper = 104
		require.True(t, s.IsSqueeze())
		c := svc.Classify(s)
		require.Nil(t, c.Spread)
	})

	t.Run("buy keeps independent spread candidacy", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 91
		s.RSI = 28
		s.PE = fp(20)
		c := svc.Classify(s)
		require.Equal(t, domain.SignalBuy, c.Signal)
		require.NotNil(t, c.Spread)
	})
}

func TestClassify_TrendAndScore(t *testing.T) {
	svc := newTestClassifier()

	t.Run("trend direction follows fast average", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 100
		s.DMA50 = fp(98)
		require.Equal(t, "bullish", svc.Classify(s).TrendDir)

		s.DMA50 = fp(105)
		require.Equal(t, "bearish", svc.Classify(s).TrendDir)
	})

	t.Run("trend rationale uses directional lines", func(t *testing.T) {
		s := baseSnapshot()
		s.PlusDI = 30
		s.MinusDI = 10
		s.ADX = 28.4
		c := svc.Classify(s)
		require.Equal(t, "Strong Bullish Trend (ADX: 28.4)", c.TrendRationale)
	})

	t.Run("score stays in range and rewards uptrends", func(t *testing.T) {
		strong := baseSnapshot()
		strong.Price = 100
		strong.DMA50 = fp(95)
		strong.DMA200 = fp(98)
		strong.DMA200Slope = fp(0.1)
		strong.MACD = 1.0
		strong.MACDSignal = 0.5
		strong.MACDHist = []float64{0.1, 0.2, 0.3}
		strong.RSI = 55

		weak := baseSnapshot()
		weak.Price = 80
		weak.DMA50 = fp(95)
		weak.DMA200 = fp(98)
		weak.DMA200Slope = fp(-0.1)
		weak.MACD = -1.0
		weak.MACDSignal = -0.5
		weak.MACDHist = []float64{-0.1, -0.2, -0.3}
		weak.RSI = 45

		cs := svc.Classify(strong)
		cw := svc.Classify(weak)
		require.Greater(t, cs.Score, cw.Score)
		require.LessOrEqual(t, cs.Score, 100.0)
		require.GreaterOrEqual(t, cw.Score, 0.0)
		require.NotEmpty(t, cs.Why)
	})

	t.Run("pct drop is positive on a down day", func(t *testing.T) {
		s := baseSnapshot()
		s.Price = 95
		s.PrevClose = 100
		c := svc.Classify(s)
		require.NotNil(t, c.PctDrop)
		require.InDelta(t, 5.0, *c.PctDrop, 1e-9)
	})
}

func TestClassify_Tiers(t *testing.T) {
	svc := newTestClassifier()

	cases := []struct {
		name string
		rsi  float64
		pe   *float64
		want int
	}{
		{"both pass", 28, fp(20), 1},
		{"rsi only", 28, fp(80), 2},
		{"pe only", 50, fp(20), 2},
		{"neither", 50, fp(80), 3},
		{"nil pe counts as failing", 50, nil, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := baseSnapshot()
			s.RSI = tc.rsi
			s.PE = tc.pe
			require.Equal(t, tc.want, svc.Classify(s).Tier)
		})
	}
}

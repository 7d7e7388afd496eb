package calculator

import (
	"math"
	"testing"
	"time"

	"stockhome/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func barsFromCloses(closes []float64) []domain.Bar {
	out := make([]domain.Bar, len(closes))
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = domain.Bar{
			Date:  day.AddDate(0, 0, i),
			Open:  decimal.NewFromFloat(c),
			High:  decimal.NewFromFloat(c * 1.01),
			Low:   decimal.NewFromFloat(c * 0.99),
			Close: decimal.NewFromFloat(c),
		}
	}
	return out
}

// sawtooth generates a series oscillating around base so RSI and the bands
// have realistic variance to work with.
func sawtooth(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + 2*math.Sin(float64(i)/3) + 0.01*float64(i)
	}
	return out
}

func TestCompute(t *testing.T) {
	t.Run("rejects short history", func(t *testing.T) {
		_, err := Compute(barsFromCloses(sawtooth(MinBars-1, 100)))
		require.Error(t, err)
		require.Contains(t, err.Error(), "insufficient history")
	})

	t.Run("omits long averages with medium history", func(t *testing.T) {
		set, err := Compute(barsFromCloses(sawtooth(120, 100)))
		require.NoError(t, err)
		require.NotNil(t, set.DMA50)
		require.Nil(t, set.DMA200)
		require.Nil(t, set.DMA200Slope)
	})

	t.Run("full history populates everything", func(t *testing.T) {
		set, err := Compute(barsFromCloses(sawtooth(300, 100)))
		require.NoError(t, err)

		require.NotNil(t, set.DMA50)
		require.NotNil(t, set.DMA200)
		require.NotNil(t, set.DMA200Slope)
		require.NotNil(t, set.IVRank)

		require.Greater(t, set.RSI, 0.0)
		require.Less(t, set.RSI, 100.0)
		require.Greater(t, set.BBUpper, set.BBLower)
		require.Greater(t, set.KCUpper, set.KCLower)
		require.GreaterOrEqual(t, *set.IVRank, 0.0)
		require.LessOrEqual(t, *set.IVRank, 100.0)
		require.Len(t, set.MACDHist, 3)
	})

	t.Run("previous close tracks second to last bar", func(t *testing.T) {
		closes := sawtooth(80, 50)
		set, err := Compute(barsFromCloses(closes))
		require.NoError(t, err)
		require.InDelta(t, closes[len(closes)-2], set.PrevClose, 1e-9)
		require.InDelta(t, closes[len(closes)-1], set.Close, 1e-9)
	})

	t.Run("uptrend drifts slope positive", func(t *testing.T) {
		closes := make([]float64, 300)
		for i := range closes {
			closes[i] = 100 + 0.5*float64(i) + math.Sin(float64(i)/4)
		}
		set, err := Compute(barsFromCloses(closes))
		require.NoError(t, err)
		require.NotNil(t, set.DMA200Slope)
		require.Greater(t, *set.DMA200Slope, 0.0)
		require.Greater(t, set.Close, *set.DMA200)
	})
}

func TestIVRankProxy(t *testing.T) {
	t.Run("nil on short series", func(t *testing.T) {
		require.Nil(t, ivRankProxy(sawtooth(40, 100)))
	})

	t.Run("nil on nonpositive close", func(t *testing.T) {
		closes := sawtooth(300, 100)
		closes[10] = 0
		require.Nil(t, ivRankProxy(closes))
	})

	t.Run("vol spike ranks high", func(t *testing.T) {
		closes := make([]float64, 300)
		for i := range closes {
			closes[i] = 100 + 0.2*math.Sin(float64(i)/3)
		}
		// violent final month
		for i := 270; i < 300; i++ {
			closes[i] = 100 + 12*math.Sin(float64(i))
		}
		rank := ivRankProxy(closes)
		require.NotNil(t, rank)
		require.Greater(t, *rank, 80.0)
	})
}

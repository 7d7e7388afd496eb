package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockhome/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestArtifactRepository(t *testing.T) (ArtifactRepository, string) {
	t.Helper()
	dir := t.TempDir()
	repo := NewArtifactRepository(
		filepath.Join(dir, "signals.json"),
		filepath.Join(dir, "spreads.json"),
		filepath.Join(dir, "sent_buys.json"),
	)
	return repo, dir
}

func TestArtifactRepository_Signals(t *testing.T) {
	repo, dir := newTestArtifactRepository(t)

	t.Run("read before publish fails", func(t *testing.T) {
		_, err := repo.ReadSignals()
		require.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		pe := 21.4
		artifact := &domain.RunArtifact{
			RunID:         "run-1",
			GeneratedAtPT: "08-29-2026 06:35",
			Buys: []domain.BuyEntry{
				{Ticker: "INTC", Company: "Intel Corporation", Price: 22.5, RSI: 28.1, PE: &pe, Tier: 1},
			},
			Sells: []domain.SellEntry{},
			All:   []domain.UniverseEntry{},
		}
		require.NoError(t, repo.PublishSignals(artifact))

		got, err := repo.ReadSignals()
		require.NoError(t, err)
		require.Equal(t, "run-1", got.RunID)
		require.Len(t, got.Buys, 1)
		require.Equal(t, "INTC", got.Buys[0].Ticker)
		require.NotNil(t, got.Buys[0].PE)
		require.InDelta(t, 21.4, *got.Buys[0].PE, 1e-9)
	})

	t.Run("no temp files left behind", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			require.NotContains(t, e.Name(), ".tmp-")
		}
	})

	t.Run("failed write keeps prior artifact intact", func(t *testing.T) {
		require.NoError(t, repo.PublishSignals(&domain.RunArtifact{RunID: "run-keep"}))

		// channels are not JSON-encodable, so the write fails before rename
		err := writeJSONAtomic(filepath.Join(dir, "signals.json"), make(chan int))
		require.Error(t, err)

		got, err := repo.ReadSignals()
		require.NoError(t, err)
		require.Equal(t, "run-keep", got.RunID)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			require.NotContains(t, e.Name(), ".tmp-")
		}
	})

	t.Run("publish replaces whole artifact", func(t *testing.T) {
		require.NoError(t, repo.PublishSignals(&domain.RunArtifact{RunID: "run-2"}))
		got, err := repo.ReadSignals()
		require.NoError(t, err)
		require.Equal(t, "run-2", got.RunID)
		require.Empty(t, got.Buys)
	})
}

func TestArtifactRepository_Spreads(t *testing.T) {
	repo, _ := newTestArtifactRepository(t)

	require.NoError(t, repo.PublishSpreads([]domain.SpreadEntry{
		{Ticker: "NVDA", Direction: "bearish", Strategy: "Bear Put (Debit)", IsNew: true},
	}))

	got, err := repo.ReadSpreads()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "NVDA", got[0].Ticker)
	require.True(t, got[0].IsNew)

	t.Run("nil publishes empty list", func(t *testing.T) {
		require.NoError(t, repo.PublishSpreads(nil))
		got, err := repo.ReadSpreads()
		require.NoError(t, err)
		require.Empty(t, got)
	})
}

func TestArtifactRepository_PreviousBuys(t *testing.T) {
	repo, _ := newTestArtifactRepository(t)

	t.Run("missing state reads empty", func(t *testing.T) {
		got, err := repo.LoadPreviousBuys()
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("round trip as set", func(t *testing.T) {
		require.NoError(t, repo.SavePreviousBuys([]string{"INTC", "PFE"}))
		got, err := repo.LoadPreviousBuys()
		require.NoError(t, err)
		require.Equal(t, map[string]bool{"INTC": true, "PFE": true}, got)
	})
}

func TestAlertLogRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts_log.csv")
	repo := NewAlertLogRepository(path)

	require.NoError(t, repo.Append([]AlertRecord{
		{Timestamp: "2026-08-29T13:35:00Z", RunID: "run-1", Ticker: "INTC", Signal: "BUY", Price: 22.5, RSI: 28.1, Tier: 1},
	}))
	require.NoError(t, repo.Append([]AlertRecord{
		{Timestamp: "2026-08-29T14:35:00Z", RunID: "run-2", Ticker: "PFE", Signal: "SELL", Price: 31.0, RSI: 72.3, Tier: 3},
	}))

	records, err := repo.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "INTC", records[0].Ticker)
	require.Equal(t, "PFE", records[1].Ticker)

	// header must appear exactly once
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "timestamp,run_id"))
}

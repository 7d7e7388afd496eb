package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stockhome/internal/domain"
	"stockhome/internal/repository"

	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T) (ApiHandler, repository.ArtifactRepository, string) {
	t.Helper()
	dir := t.TempDir()
	repo := repository.NewArtifactRepository(
		filepath.Join(dir, "signals.json"),
		filepath.Join(dir, "spreads.json"),
		filepath.Join(dir, "sent_buys.json"),
	)
	return ApiHandler{ArtifactRepository: repo}, repo, dir
}

func get(t *testing.T, handler ApiHandler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	handler.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	handler, _, _ := newTestApi(t)
	w := get(t, handler, "/health")
	require.Equal(t, 200, w.Code)
}

func TestSignals(t *testing.T) {
	handler, repo, dir := newTestApi(t)

	t.Run("missing artifact degrades to 503", func(t *testing.T) {
		w := get(t, handler, "/signals")
		require.Equal(t, 503, w.Code)
		body := map[string]string{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotEmpty(t, body["error"])
	})

	t.Run("serves the published artifact", func(t *testing.T) {
		require.NoError(t, repo.PublishSignals(&domain.RunArtifact{
			RunID:         "run-1",
			GeneratedAtPT: "08-29-2026 06:35",
			Buys:          []domain.BuyEntry{{Ticker: "INTC"}},
		}))

		w := get(t, handler, "/signals")
		require.Equal(t, 200, w.Code)

		got := domain.RunArtifact{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, "run-1", got.RunID)
		require.Len(t, got.Buys, 1)
	})

	t.Run("malformed artifact degrades to 503", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "signals.json"), []byte("{truncated"), 0o644))
		w := get(t, handler, "/signals")
		require.Equal(t, 503, w.Code)
	})
}

func TestSpreads(t *testing.T) {
	handler, repo, _ := newTestApi(t)

	t.Run("missing artifact degrades to 503", func(t *testing.T) {
		w := get(t, handler, "/spreads")
		require.Equal(t, 503, w.Code)
	})

	t.Run("serves published spreads", func(t *testing.T) {
		require.NoError(t, repo.PublishSpreads([]domain.SpreadEntry{
			{Ticker: "NVDA", Strategy: "Bear Call (Credit)", Direction: "bearish", IsNew: true},
		}))

		w := get(t, handler, "/spreads")
		require.Equal(t, 200, w.Code)

		got := []domain.SpreadEntry{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		require.Equal(t, "NVDA", got[0].Ticker)
	})
}

package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"stockhome/internal/domain"
)

// ArtifactRepository persists run output as JSON files. Writes go through a
// temp file and rename so readers never observe a half-written artifact.
type ArtifactRepository interface {
	PublishSignals(artifact *domain.RunArtifact) error
	ReadSignals() (*domain.RunArtifact, error)

	PublishSpreads(spreads []domain.SpreadEntry) error
	ReadSpreads() ([]domain.SpreadEntry, error)

	// LoadPreviousBuys returns the ticker set from the last emailed buy list,
	// or an empty set when no state exists yet.
	LoadPreviousBuys() (map[string]bool, error)
	SavePreviousBuys(tickers []string) error
}

type artifactRepositoryHandler struct {
	signalsPath      string
	spreadsPath      string
	previousBuysPath string
}

func NewArtifactRepository(signalsPath, spreadsPath, previousBuysPath string) ArtifactRepository {
	return &artifactRepositoryHandler{
		signalsPath:      signalsPath,
		spreadsPath:      spreadsPath,
		previousBuysPath: previousBuysPath,
	}
}

func writeJSONAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to publish artifact %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return nil
}

func (h *artifactRepositoryHandler) PublishSignals(artifact *domain.RunArtifact) error {
	return writeJSONAtomic(h.signalsPath, artifact)
}

func (h *artifactRepositoryHandler) ReadSignals() (*domain.RunArtifact, error) {
	out := domain.RunArtifact{}
	if err := readJSON(h.signalsPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *artifactRepositoryHandler) PublishSpreads(spreads []domain.SpreadEntry) error {
	if spreads == nil {
		spreads = []domain.SpreadEntry{}
	}
	return writeJSONAtomic(h.spreadsPath, spreads)
}

func (h *artifactRepositoryHandler) ReadSpreads() ([]domain.SpreadEntry, error) {
	out := []domain.SpreadEntry{}
	if err := readJSON(h.spreadsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *artifactRepositoryHandler) LoadPreviousBuys() (map[string]bool, error) {
	tickers := []string{}
	if err := readJSON(h.previousBuysPath, &tickers); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, err
	}
	out := map[string]bool{}
	for _, t := range tickers {
		out[t] = true
	}
	return out, nil
}

func (h *artifactRepositoryHandler) SavePreviousBuys(tickers []string) error {
	if tickers == nil {
		tickers = []string{}
	}
	return writeJSONAtomic(h.previousBuysPath, tickers)
}

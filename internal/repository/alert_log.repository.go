package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
)

// AlertRecord is one row of the append-only alert history CSV.
type AlertRecord struct {
	Timestamp  string  `csv:"timestamp"`
	RunID      string  `csv:"run_id"`
	Ticker     string  `csv:"ticker"`
	Signal     string  `csv:"signal"`
	Price      float64 `csv:"price"`
	RSI        float64 `csv:"rsi"`
	Score      float64 `csv:"score"`
	Tier       int     `csv:"tier"`
	Rationale  string  `csv:"rationale"`
	PutSummary string  `csv:"put_summary"`
}

type AlertLogRepository interface {
	Append(records []AlertRecord) error
	ReadAll() ([]AlertRecord, error)
}

type alertLogRepositoryHandler struct {
	path string
}

func NewAlertLogRepository(path string) AlertLogRepository {
	return &alertLogRepositoryHandler{path: path}
}

func (h *alertLogRepositoryHandler) Append(records []AlertRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create alert log dir: %w", err)
	}

	info, statErr := os.Stat(h.path)
	writeHeader := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open alert log: %w", err)
	}
	defer f.Close()

	if writeHeader {
		err = gocsv.MarshalFile(&records, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(&records, f)
	}
	if err != nil {
		return fmt.Errorf("failed to append alert records: %w", err)
	}
	return nil
}

func (h *alertLogRepositoryHandler) ReadAll() ([]AlertRecord, error) {
	f, err := os.Open(h.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alert log: %w", err)
	}
	defer f.Close()

	records := []AlertRecord{}
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("failed to parse alert log: %w", err)
	}
	return records, nil
}

// AlertTimestamp formats times the way rows are stored in the log.
func AlertTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

package service

import (
	"fmt"
	"time"

	"stockhome/internal/config"
	"stockhome/internal/domain"
	"stockhome/internal/repository"
)

const (
	noChainNote  = "No option chain data available"
	earningsNote = "earnings within 7 days"
	lowIVNote    = "IV rank below threshold"
	noStrikeNote = "no strike met the buffer rule"
)

// SelectorService picks the cash-secured put to sell against a Buy ticker.
type SelectorService interface {
	// SelectPut returns the best put, or nil with a display note explaining
	// why no recommendation was made. The note is empty when a put exists.
	SelectPut(snapshot *domain.TickerSnapshot) (*domain.PutRecommendation, string, error)
}

type selectorServiceHandler struct {
	chainRepository repository.OptionsChainRepository
	cfg             config.SelectorConfig
	now             func() time.Time
}

func NewSelectorService(chainRepository repository.OptionsChainRepository, cfg config.SelectorConfig) SelectorService {
	return selectorServiceHandler{
		chainRepository: chainRepository,
		cfg:             cfg,
		now:             time.Now,
	}
}

func (h selectorServiceHandler) SelectPut(s *domain.TickerSnapshot) (*domain.PutRecommendation, string, error) {
	today := h.now()

	if s.EarningsDate != nil {
		until := s.EarningsDate.Sub(today)
		if until >= 0 && until <= time.Duration(h.cfg.EarningsBufferDays)*24*time.Hour {
			return nil, earningsNote, nil
		}
	}

	// the volatility gate only applies when history was long enough to rank
	if s.IVRank != nil && *s.IVRank < h.cfg.MinIVRank {
		return nil, lowIVNote, nil
	}

	expirations, err := h.chainRepository.GetExpirations(s.Ticker)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list expirations for %s: %w", s.Ticker, err)
	}

	candidates, weeklyAvailable := h.candidateExpirations(expirations, today)
	if len(candidates) == 0 {
		return nil, noChainNote, nil
	}

	var best *domain.PutRecommendation
	for _, expiration := range candidates {
		puts, err := h.chainRepository.GetPuts(s.Ticker, expiration)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch puts for %s: %w", s.Ticker, err)
		}
		for _, put := range puts {
			rec := h.evaluate(s.Price, put)
			if rec == nil {
				continue
			}
			if best == nil || rec.MetricSum > best.MetricSum {
				best = rec
			}
		}
	}
	if best == nil {
		return nil, noStrikeNote, nil
	}

	best.WeeklyAvailable = weeklyAvailable
	best.MonthlyAvailable = domain.IsMonthlyExpiration(best.Expiration)
	return best, "", nil
}

// candidateExpirations keeps expirations inside the DTE window and reports
// whether any of them is a weekly. When the window is empty it falls back to
// the nearest monthly expiration at or past the lower bound, reported as
// weekly_available=false.
func (h selectorServiceHandler) candidateExpirations(expirations []time.Time, today time.Time) ([]time.Time, bool) {
	inWindow := []time.Time{}
	weeklyAvailable := false
	for _, e := range expirations {
		dte := daysUntil(today, e)
		if dte >= h.cfg.MinDTE && dte <= h.cfg.MaxDTE {
			inWindow = append(inWindow, e)
			if !domain.IsMonthlyExpiration(e) {
				weeklyAvailable = true
			}
		}
	}
	if len(inWindow) > 0 {
		return inWindow, weeklyAvailable
	}

	for _, e := range expirations {
		if daysUntil(today, e) >= h.cfg.MinDTE && domain.IsMonthlyExpiration(e) {
			return []time.Time{e}, false
		}
	}
	return nil, false
}

// evaluate scores one put, returning nil when the strike or the
// discount+premium buffer disqualifies it.
func (h selectorServiceHandler) evaluate(price float64, put domain.PutQuote) *domain.PutRecommendation {
	premium := put.Premium.InexactFloat64()
	if put.Strike <= 0 || put.Strike > price || premium <= 0 {
		return nil
	}

	deltaPercent := (price - put.Strike) / price * 100
	premiumPercent := premium / put.Strike * 100

	bufferPercent := ((price - put.Strike) + premium/100) / price * 100
	if bufferPercent < h.cfg.MinBufferPercent {
		return nil
	}

	return &domain.PutRecommendation{
		Strike:         put.Strike,
		Expiration:     put.Expiration,
		Premium:        premium,
		DeltaPercent:   deltaPercent,
		PremiumPercent: premiumPercent,
		MetricSum:      deltaPercent + premiumPercent,
	}
}

func daysUntil(today, expiration time.Time) int {
	return int(expiration.Sub(today).Hours() / 24)
}

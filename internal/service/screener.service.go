package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"stockhome/internal/calculator"
	"stockhome/internal/config"
	"stockhome/internal/domain"
	"stockhome/internal/logger"
	"stockhome/internal/repository"

	"github.com/google/uuid"
)

const earningsDateLayout = "2006-01-02"

// ScreenerService runs one full screening pass: fetch, score, select puts,
// aggregate, publish.
type ScreenerService interface {
	Run(ctx context.Context) (*domain.RunArtifact, error)
}

type screenerServiceHandler struct {
	priceRepository        repository.PriceHistoryRepository
	fundamentalsRepository repository.FundamentalsRepository
	artifactRepository     repository.ArtifactRepository
	alertLogRepository     repository.AlertLogRepository
	classifierService      ClassifierService
	selectorService        SelectorService
	emailService           EmailService

	cfg config.Config
	now func() time.Time
}

func NewScreenerService(
	priceRepository repository.PriceHistoryRepository,
	fundamentalsRepository repository.FundamentalsRepository,
	artifactRepository repository.ArtifactRepository,
	alertLogRepository repository.AlertLogRepository,
	classifierService ClassifierService,
	selectorService SelectorService,
	emailService EmailService,
	cfg config.Config,
) ScreenerService {
	return &screenerServiceHandler{
		priceRepository:        priceRepository,
		fundamentalsRepository: fundamentalsRepository,
		artifactRepository:     artifactRepository,
		alertLogRepository:     alertLogRepository,
		classifierService:      classifierService,
		selectorService:        selectorService,
		emailService:           emailService,
		cfg:                    cfg,
		now:                    time.Now,
	}
}

type tickerResult struct {
	snapshot       *domain.TickerSnapshot
	classification *domain.Classification
	put            *domain.PutRecommendation
	putNote        string
}

func (h *screenerServiceHandler) Run(ctx context.Context) (*domain.RunArtifact, error) {
	log := logger.FromContext(ctx)
	start := h.now()
	runID := uuid.NewString()

	log.Infow("starting screening run", "runID", runID, "tickers", len(h.cfg.Tickers))

	results := h.evaluateAll(ctx, h.cfg.Tickers)
	log.Infow("evaluated tickers", "runID", runID, "succeeded", len(results), "failed", len(h.cfg.Tickers)-len(results))

	artifact := h.aggregate(runID, start, results)
	if err := h.artifactRepository.PublishSignals(artifact); err != nil {
		return nil, fmt.Errorf("failed to publish signals: %w", err)
	}

	spreads, err := h.buildSpreads(results)
	if err != nil {
		return nil, err
	}
	if err := h.artifactRepository.PublishSpreads(spreads); err != nil {
		return nil, fmt.Errorf("failed to publish spreads: %w", err)
	}

	// buy-list diffing and the alert log are best effort; a failed email
	// must not fail a run that already published
	if err := h.notifyBuyChanges(ctx, artifact); err != nil {
		log.Warnw("buy alert failed", "runID", runID, "err", err)
	}
	if err := h.logAlerts(runID, start, artifact); err != nil {
		log.Warnw("alert log append failed", "runID", runID, "err", err)
	}

	log.Infow("screening run complete",
		"runID", runID,
		"buys", len(artifact.Buys),
		"sells", len(artifact.Sells),
		"spreads", len(spreads),
		"elapsed", h.now().Sub(start).String(),
	)
	return artifact, nil
}

// evaluateAll fans the ticker list out over a bounded worker pool. Each
// ticker is independent; one ticker's provider failure is logged and skipped
// without touching the rest of the batch.
func (h *screenerServiceHandler) evaluateAll(ctx context.Context, tickers []string) []tickerResult {
	log := logger.FromContext(ctx)

	numGoroutines := h.cfg.Screener.Workers
	if numGoroutines <= 0 {
		numGoroutines = 1
	}

	inputCh := make(chan string, len(tickers))
	for _, t := range tickers {
		inputCh <- t
	}
	close(inputCh)

	var mu sync.Mutex
	results := []tickerResult{}

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range inputCh {
				result, err := h.evaluateTicker(ticker)
				if err != nil {
					log.Warnw("skipping ticker", "ticker", ticker, "err", err)
					continue
				}
				mu.Lock()
				results = append(results, *result)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return results
}

func (h *screenerServiceHandler) evaluateTicker(ticker string) (*tickerResult, error) {
	end := h.now()
	start := end.AddDate(-h.cfg.Screener.HistoryYears, 0, 0)

	bars, err := h.priceRepository.GetDailyBars(ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	indicators, err := calculator.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("failed to compute indicators: %w", err)
	}
	fundamentals, err := h.fundamentalsRepository.Get(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals: %w", err)
	}

	snapshot := buildSnapshot(ticker, indicators, fundamentals)
	classification := h.classifierService.Classify(snapshot)

	result := &tickerResult{
		snapshot:       snapshot,
		classification: classification,
	}
	if classification.Signal == domain.SignalBuy {
		put, note, err := h.selectorService.SelectPut(snapshot)
		if err != nil {
			// a chain failure degrades to a buy without a put
			result.putNote = noChainNote
		} else {
			result.put = put
			result.putNote = note
		}
	}
	return result, nil
}

// buildSnapshot merges the indicator set with live fundamentals. The live
// quote wins over the last bar close when the provider has one.
func buildSnapshot(ticker string, ind *calculator.IndicatorSet, f *domain.Fundamentals) *domain.TickerSnapshot {
	price := ind.Close
	if f.Price > 0 {
		price = f.Price
	}
	prevClose := ind.PrevClose
	if f.PrevClose > 0 {
		prevClose = f.PrevClose
	}
	company := f.Company
	if company == "" {
		company = ticker
	}

	return &domain.TickerSnapshot{
		Ticker:       ticker,
		Company:      company,
		Price:        price,
		PrevClose:    prevClose,
		RSI:          ind.RSI,
		DMA50:        ind.DMA50,
		DMA200:       ind.DMA200,
		ADX:          ind.ADX,
		BBLower:      ind.BBLower,
		BBUpper:      ind.BBUpper,
		KCLower:      ind.KCLower,
		KCUpper:      ind.KCUpper,
		PlusDI:       ind.PlusDI,
		MinusDI:      ind.MinusDI,
		MACD:         ind.MACD,
		MACDSignal:   ind.MACDSignal,
		MACDHist:     ind.MACDHist,
		DMA200Slope:  ind.DMA200Slope,
		IVRank:       ind.IVRank,
		PE:           f.PE,
		MarketCap:    f.MarketCap,
		EarningsDate: f.EarningsDate,
	}
}

func (h *screenerServiceHandler) aggregate(runID string, start time.Time, results []tickerResult) *domain.RunArtifact {
	artifact := &domain.RunArtifact{
		RunID:         runID,
		GeneratedAtPT: formatGeneratedAt(start),
		Buys:          []domain.BuyEntry{},
		Sells:         []domain.SellEntry{},
		All:           []domain.UniverseEntry{},
	}

	for _, r := range results {
		s, c := r.snapshot, r.classification

		switch c.Signal {
		case domain.SignalBuy:
			artifact.Buys = append(artifact.Buys, buildBuyEntry(r))
		case domain.SignalSell:
			artifact.Sells = append(artifact.Sells, domain.SellEntry{
				Ticker:       s.Ticker,
				Company:      s.Company,
				Price:        s.Price,
				RSI:          s.RSI,
				PE:           s.PE,
				MarketCap:    s.MarketCap,
				MarketCapStr: domain.FormatMarketCap(s.MarketCap),
				EarningsDate: formatEarningsDate(s.EarningsDate),
			})
		}

		artifact.All = append(artifact.All, domain.UniverseEntry{
			Ticker:       s.Ticker,
			Company:      s.Company,
			Score:        c.Score,
			Tier:         c.Tier,
			PriceStr:     fmt.Sprintf("%.2f", s.Price),
			RSIStr:       fmt.Sprintf("%.1f", s.RSI),
			PEStr:        formatOptional(s.PE, "%.1f"),
			MarketCapStr: domain.FormatMarketCap(s.MarketCap),
			DMA50Str:     formatOptional(s.DMA50, "%.2f"),
			DMA200Str:    formatOptional(s.DMA200, "%.2f"),
			PctDrop:      c.PctDrop,
			Why:          c.Why,
		})
	}

	sort.SliceStable(artifact.Buys, func(i, j int) bool {
		return artifact.Buys[i].MarketCap > artifact.Buys[j].MarketCap
	})
	sort.SliceStable(artifact.Sells, func(i, j int) bool {
		return artifact.Sells[i].MarketCap > artifact.Sells[j].MarketCap
	})
	sort.SliceStable(artifact.All, func(i, j int) bool {
		if artifact.All[i].Tier != artifact.All[j].Tier {
			return artifact.All[i].Tier < artifact.All[j].Tier
		}
		return artifact.All[i].Score > artifact.All[j].Score
	})

	return artifact
}

func buildBuyEntry(r tickerResult) domain.BuyEntry {
	s, c := r.snapshot, r.classification
	entry := domain.BuyEntry{
		Ticker:         s.Ticker,
		Company:        s.Company,
		Price:          s.Price,
		RSI:            s.RSI,
		PE:             s.PE,
		DMA50:          s.DMA50,
		DMA200:         s.DMA200,
		MarketCap:      s.MarketCap,
		MarketCapStr:   domain.FormatMarketCap(s.MarketCap),
		ADX:            s.ADX,
		TrendDir:       c.TrendDir,
		TrendRationale: c.TrendRationale,
		EarningsDate:   formatEarningsDate(s.EarningsDate),
		RSIBBSignal:    c.RSIBBSignal,
		Score:          c.Score,
		Tier:           c.Tier,
		PutNote:        r.putNote,
	}
	if r.put != nil {
		entry.Put = &domain.PutEntry{
			Strike:           r.put.Strike,
			Expiration:       domain.FormatExpiration(r.put.Expiration),
			Premium:          r.put.Premium,
			DeltaPercent:     r.put.DeltaPercent,
			PremiumPercent:   r.put.PremiumPercent,
			MetricSum:        r.put.MetricSum,
			WeeklyAvailable:  r.put.WeeklyAvailable,
			MonthlyAvailable: r.put.MonthlyAvailable,
		}
	}
	return entry
}

// buildSpreads assembles the spread-candidate artifact, marking tickers that
// were absent from the previous publish as new and floating them to the top.
func (h *screenerServiceHandler) buildSpreads(results []tickerResult) ([]domain.SpreadEntry, error) {
	previous := map[string]bool{}
	if prior, err := h.artifactRepository.ReadSpreads(); err == nil {
		for _, p := range prior {
			previous[p.Ticker] = true
		}
	}

	spreads := []domain.SpreadEntry{}
	for _, r := range results {
		s, c := r.snapshot, r.classification
		if c.Spread == nil {
			continue
		}
		spreads = append(spreads, domain.SpreadEntry{
			Ticker:    s.Ticker,
			Company:   s.Company,
			McapB:     float64(s.MarketCap) / 1e9,
			Strategy:  c.Spread.Strategy,
			Price:     s.Price,
			RSI:       s.RSI,
			ADX:       s.ADX,
			Direction: c.Spread.Direction,
			IsSqueeze: s.IsSqueeze(),
			Reasoning: c.Spread.Reasoning,
			IsNew:     !previous[s.Ticker],
		})
	}

	sort.SliceStable(spreads, func(i, j int) bool {
		if spreads[i].IsNew != spreads[j].IsNew {
			return spreads[i].IsNew
		}
		return spreads[i].McapB > spreads[j].McapB
	})
	return spreads, nil
}

// notifyBuyChanges emails only when the set of buy tickers differs from the
// last alerted set, then records the new set.
func (h *screenerServiceHandler) notifyBuyChanges(ctx context.Context, artifact *domain.RunArtifact) error {
	if h.emailService == nil {
		return nil
	}

	previous, err := h.artifactRepository.LoadPreviousBuys()
	if err != nil {
		return err
	}

	current := make([]string, 0, len(artifact.Buys))
	currentSet := map[string]bool{}
	for _, b := range artifact.Buys {
		current = append(current, b.Ticker)
		currentSet[b.Ticker] = true
	}

	added := []string{}
	for _, t := range current {
		if !previous[t] {
			added = append(added, t)
		}
	}
	removed := []string{}
	for t := range previous {
		if !currentSet[t] {
			removed = append(removed, t)
		}
	}
	sort.Strings(removed)

	if len(added) == 0 && len(removed) == 0 {
		return nil
	}
	if err := h.emailService.SendBuyListAlert(artifact, added, removed); err != nil {
		return err
	}
	return h.artifactRepository.SavePreviousBuys(current)
}

func (h *screenerServiceHandler) logAlerts(runID string, start time.Time, artifact *domain.RunArtifact) error {
	records := []repository.AlertRecord{}
	ts := repository.AlertTimestamp(start)

	tiers := map[string]int{}
	for _, u := range artifact.All {
		tiers[u.Ticker] = u.Tier
	}

	for _, b := range artifact.Buys {
		putSummary := b.PutNote
		if b.Put != nil {
			putSummary = fmt.Sprintf("strike %.2f exp %s premium %.2f", b.Put.Strike, b.Put.Expiration, b.Put.Premium)
		}
		records = append(records, repository.AlertRecord{
			Timestamp:  ts,
			RunID:      runID,
			Ticker:     b.Ticker,
			Signal:     string(domain.SignalBuy),
			Price:      b.Price,
			RSI:        b.RSI,
			Score:      b.Score,
			Tier:       b.Tier,
			Rationale:  b.TrendRationale,
			PutSummary: putSummary,
		})
	}
	for _, s := range artifact.Sells {
		records = append(records, repository.AlertRecord{
			Timestamp: ts,
			RunID:     runID,
			Ticker:    s.Ticker,
			Signal:    string(domain.SignalSell),
			Price:     s.Price,
			RSI:       s.RSI,
			Tier:      tiers[s.Ticker],
		})
	}
	return h.alertLogRepository.Append(records)
}

func formatGeneratedAt(t time.Time) string {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(domain.GeneratedAtLayout)
}

func formatEarningsDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(earningsDateLayout)
	return &s
}

func formatOptional(v *float64, layout string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(layout, *v)
}

package l3_service

import (
	"context"
	"errors"
	"fmt"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/logger"
	"holdingsbuilder/internal/metrics"
	l1_service "holdingsbuilder/internal/service/l1"
	l2_service "holdingsbuilder/internal/service/l2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

type PriceLookupMode string

const (
	// PriceLookupExact prices holdings on the rebalance date itself
	PriceLookupExact PriceLookupMode = "exact"
	// PriceLookupPreviousTradingDay falls back to the latest trading
	// day before the rebalance date, up to MaxPriceLookbackDays back
	PriceLookupPreviousTradingDay PriceLookupMode = "previous_trading_day"

	MaxPriceLookbackDays = 7
	DefaultWorkers       = 4
)

func (m PriceLookupMode) Valid() bool {
	return m == PriceLookupExact || m == PriceLookupPreviousTradingDay
}

type BuildOptions struct {
	Notional    decimal.Decimal
	Workers     int
	PriceLookup PriceLookupMode
	Metrics     *metrics.Registry
}

// DateResult is everything computed for one rebalance date
type DateResult struct {
	Date time.Time
	// date of the price row used for quantities
	PriceDate time.Time
	Weights   []domain.FinalWeight
	Portfolio *domain.Portfolio
	Omissions []domain.Omission
	// value of the held quantities at PriceDate. always <= notional
	// up to rounding of the weights
	MarketValue    decimal.Decimal
	InvestedWeight float64
}

func (r DateResult) Holdings() []domain.Holding {
	if r.Portfolio == nil {
		return []domain.Holding{}
	}
	return r.Portfolio.Holdings()
}

type BuildResult struct {
	RunID    uuid.UUID
	Notional decimal.Decimal
	// successful dates, ascending
	Dates []DateResult
	// failed dates, ascending
	Failures []*domain.DateError
}

// Holdings flattens every date into one table ordered by date,
// then by candidate order
func (r BuildResult) Holdings() []domain.Holding {
	out := []domain.Holding{}
	for _, d := range r.Dates {
		out = append(out, d.Holdings()...)
	}
	domain.SortHoldings(out)
	return out
}

type PortfolioService interface {
	BuildOnDate(ctx context.Context, date time.Time) (*DateResult, error)
	Build(ctx context.Context) (*BuildResult, error)
	Schedule() domain.RebalanceSchedule
}

type portfolioServiceHandler struct {
	PriceStore         l1_service.PriceStore
	CandidateTable     l1_service.CandidateTable
	RebalanceSchedule  domain.RebalanceSchedule
	CandidateFilter    l2_service.CandidateFilter
	WeightRenormalizer l2_service.WeightRenormalizer
	QuantityConverter  QuantityConverter
	Options            BuildOptions
}

func NewPortfolioService(
	priceStore l1_service.PriceStore,
	candidateTable l1_service.CandidateTable,
	schedule domain.RebalanceSchedule,
	candidateFilter l2_service.CandidateFilter,
	weightRenormalizer l2_service.WeightRenormalizer,
	quantityConverter QuantityConverter,
	options BuildOptions,
) PortfolioService {
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}
	if options.PriceLookup == "" {
		options.PriceLookup = PriceLookupExact
	}
	if options.Metrics == nil {
		options.Metrics = metrics.Default()
	}
	return portfolioServiceHandler{
		PriceStore:         priceStore,
		CandidateTable:     candidateTable,
		RebalanceSchedule:  schedule,
		CandidateFilter:    candidateFilter,
		WeightRenormalizer: weightRenormalizer,
		QuantityConverter:  quantityConverter,
		Options:            options,
	}
}

func (h portfolioServiceHandler) Schedule() domain.RebalanceSchedule {
	return h.RebalanceSchedule
}

func dateError(date time.Time, stage domain.RebalanceStage, err error) *domain.DateError {
	return &domain.DateError{
		Date:  date,
		Stage: stage,
		Err:   err,
	}
}

// BuildOnDate runs one date through
// CandidatesLoaded -> Filtered -> Renormalized -> PriceResolved -> QuantitiesComputed.
// Securities that cannot be resolved at some stage are recorded as
// omissions and the date carries on without them. Anything that
// stops the whole date comes back as a *domain.DateError.
func (h portfolioServiceHandler) BuildOnDate(ctx context.Context, date time.Time) (*DateResult, error) {
	start := time.Now()
	result, err := h.buildOnDate(ctx, date)
	status := metrics.StatusOk
	if err != nil {
		status = metrics.StatusFailed
	}
	h.Options.Metrics.RecordDate(status, time.Since(start))
	return result, err
}

func (h portfolioServiceHandler) buildOnDate(ctx context.Context, date time.Time) (*DateResult, error) {
	log := logger.FromContext(ctx).With("date", date.Format(time.DateOnly))
	profile := domain.GetProfile(ctx)
	_, endSpan := profile.StartSpan(fmt.Sprintf("build holdings on %s", date.Format(time.DateOnly)))
	defer endSpan()

	result := &DateResult{
		Date:      date,
		Omissions: []domain.Omission{},
	}

	// CandidatesLoaded
	ids := h.CandidateTable.SecurityIDsOnDate(date)
	if len(ids) == 0 {
		return nil, dateError(date, domain.StageCandidatesLoaded, &domain.NoDataForDateError{
			Date:        date,
			Requirement: "candidate rows",
		})
	}
	weights := h.CandidateTable.CandidatesOnDate(date, ids)

	// Filtered
	flags, err := h.CandidateFilter.FilterOnDate(date, ids)
	if err != nil {
		return nil, dateError(date, domain.StageFiltered, err)
	}
	for _, id := range ids {
		if _, ok := flags[id]; !ok {
			result.Omissions = append(result.Omissions, domain.Omission{
				SecurityID: id,
				Stage:      domain.StageFiltered,
				Reason:     "no price data in filter window",
			})
		}
	}

	// Renormalized
	finalWeights, err := h.WeightRenormalizer.Renormalize(weights, flags)
	if err != nil {
		return nil, dateError(date, domain.StageRenormalized, err)
	}
	result.Weights = finalWeights

	// PriceResolved
	priceRow, err := h.resolvePrice(date)
	if err != nil {
		return nil, dateError(date, domain.StagePriceResolved, err)
	}
	result.PriceDate = priceRow.Date
	for _, w := range finalWeights {
		px, ok := priceRow.Get(w.SecurityID)
		if !ok {
			result.Omissions = append(result.Omissions, domain.Omission{
				SecurityID: w.SecurityID,
				Stage:      domain.StagePriceResolved,
				Reason:     fmt.Sprintf("no price on %s", priceRow.Date.Format(time.DateOnly)),
			})
		} else if !UsablePrice(px) {
			result.Omissions = append(result.Omissions, domain.Omission{
				SecurityID: w.SecurityID,
				Stage:      domain.StagePriceResolved,
				Reason:     fmt.Sprintf("unusable price %f on %s", px, priceRow.Date.Format(time.DateOnly)),
			})
		}
	}

	// QuantitiesComputed
	quantities := h.QuantityConverter.ToQuantity(h.Options.Notional, finalWeights, priceRow)
	portfolio := domain.NewPortfolio(date)
	investedWeights := []float64{}
	for _, w := range finalWeights {
		quantity, ok := quantities[w.SecurityID]
		if !ok {
			if px, hasPrice := priceRow.Get(w.SecurityID); hasPrice && UsablePrice(px) {
				result.Omissions = append(result.Omissions, domain.Omission{
					SecurityID: w.SecurityID,
					Stage:      domain.StageQuantitiesComputed,
					Reason:     "quantity out of range",
				})
			}
			continue
		}
		portfolio.Add(domain.Position{
			SecurityID: w.SecurityID,
			Industry:   w.Industry,
			Weight:     w.Weight,
			Filter:     w.Filter,
			Quantity:   quantity,
		})
		investedWeights = append(investedWeights, w.Weight)
	}
	result.Portfolio = portfolio
	result.InvestedWeight = floats.Sum(investedWeights)

	marketValue, err := portfolio.MarketValue(priceRow)
	if err != nil {
		return nil, dateError(date, domain.StageQuantitiesComputed, err)
	}
	result.MarketValue = marketValue

	byStage := map[domain.RebalanceStage]int{}
	for _, o := range result.Omissions {
		log.Debugw("omitted security", "secID", o.SecurityID, "stage", o.Stage, "reason", o.Reason)
		byStage[o.Stage]++
	}
	for stage, n := range byStage {
		h.Options.Metrics.RecordOmissions(string(stage), n)
	}

	return result, nil
}

func (h portfolioServiceHandler) resolvePrice(date time.Time) (domain.PriceRow, error) {
	lookupDate := date
	if h.Options.PriceLookup == PriceLookupPreviousTradingDay {
		d, ok := h.PriceStore.LastTradingDayOnOrBefore(date, MaxPriceLookbackDays)
		if !ok {
			return domain.PriceRow{}, &domain.NoDataForDateError{
				Date:        date,
				Requirement: fmt.Sprintf("price row within %d days before the rebalance date", MaxPriceLookbackDays),
			}
		}
		lookupDate = d
	}

	row, err := h.PriceStore.PriceOnDate(lookupDate)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.PriceRow{}, &domain.NoDataForDateError{
			Date:        date,
			Requirement: fmt.Sprintf("price row on %s", lookupDate.Format(time.DateOnly)),
		}
	} else if err != nil {
		return domain.PriceRow{}, err
	}

	return row, nil
}

type buildInput struct {
	index int
	date  time.Time
}

type buildOutput struct {
	index  int
	result *DateResult
	err    error
}

// Build processes every scheduled date on a bounded worker pool.
// Dates do not depend on each other, so the output matches a
// sequential run. A failed date is collected in Failures and the
// rest keep going.
func (h portfolioServiceHandler) Build(ctx context.Context) (*BuildResult, error) {
	runID := uuid.New()
	log := logger.FromContext(ctx).With("runID", runID.String())
	ctx = logger.NewContext(ctx, log)
	h.Options.Metrics.RecordRun()

	dates := h.RebalanceSchedule.Dates
	numGoroutines := h.Options.Workers
	if numGoroutines > len(dates) {
		numGoroutines = len(dates)
	}

	inputCh := make(chan buildInput, len(dates))
	outputCh := make(chan buildOutput, len(dates))
	for i, d := range dates {
		inputCh <- buildInput{index: i, date: d}
	}
	close(inputCh)

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case input, ok := <-inputCh:
					if !ok {
						return
					}
					res, err := h.BuildOnDate(ctx, input.date)
					outputCh <- buildOutput{
						index:  input.index,
						result: res,
						err:    err,
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outputCh)
	}()

	results := make([]*DateResult, len(dates))
	errs := make([]error, len(dates))
	for out := range outputCh {
		results[out.index] = out.result
		errs[out.index] = out.err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build cancelled: %w", err)
	}

	buildResult := &BuildResult{
		RunID:    runID,
		Notional: h.Options.Notional,
		Dates:    []DateResult{},
		Failures: []*domain.DateError{},
	}
	for i, d := range dates {
		if errs[i] != nil {
			dateErr := &domain.DateError{}
			if !errors.As(errs[i], &dateErr) {
				dateErr = dateError(d, domain.StageCandidatesLoaded, errs[i])
			}
			log.Warnw("failed to build holdings", "date", d.Format(time.DateOnly), "stage", dateErr.Stage, "error", dateErr.Err.Error())
			buildResult.Failures = append(buildResult.Failures, dateErr)
			continue
		}
		buildResult.Dates = append(buildResult.Dates, *results[i])
	}

	log.Infow(
		"built holdings",
		"dates", len(buildResult.Dates),
		"failures", len(buildResult.Failures),
		"workers", numGoroutines,
	)

	return buildResult, nil
}

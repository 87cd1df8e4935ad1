package app

import (
	"context"
	"errors"
	"fmt"
	"holdingsbuilder/internal/config"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/logger"
	"holdingsbuilder/internal/metrics"
	"holdingsbuilder/internal/repository"
	l1_service "holdingsbuilder/internal/service/l1"
	l2_service "holdingsbuilder/internal/service/l2"
	l3_service "holdingsbuilder/internal/service/l3"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput marks errors caused by the caller's overrides
var ErrInvalidInput = errors.New("invalid input")

// Settings are the run defaults. Every field can be overridden per
// build.
type Settings struct {
	EndDate           time.Time
	Notional          decimal.Decimal
	Workers           int
	PriceLookup       l3_service.PriceLookupMode
	FilterExpression  string
	FirstWindowMonths int
}

func SettingsFromConfig(c config.Config) Settings {
	return Settings{
		EndDate:           c.End(),
		Notional:          c.NotionalValue(),
		Workers:           c.Workers,
		PriceLookup:       l3_service.PriceLookupMode(c.PriceLookup),
		FilterExpression:  c.Filter.Expression,
		FirstWindowMonths: c.Filter.FirstWindowMonths,
	}
}

type BuildInput struct {
	EndDate          *time.Time
	Notional         *decimal.Decimal
	PriceLookup      *string
	FilterExpression *string
	// write holdings to the holdings repository
	Persist bool
}

type HoldingsApp interface {
	Build(ctx context.Context, in BuildInput) (*l3_service.BuildResult, error)
	Schedule(ctx context.Context, endDate *time.Time) (*domain.RebalanceSchedule, error)
}

type holdingsAppHandler struct {
	PriceRepository     repository.PriceRepository
	CandidateRepository repository.CandidateRepository
	HoldingsRepository  repository.HoldingsRepository
	Settings            Settings
	Metrics             *metrics.Registry
}

func NewHoldingsApp(
	priceRepository repository.PriceRepository,
	candidateRepository repository.CandidateRepository,
	holdingsRepository repository.HoldingsRepository,
	settings Settings,
	metricsRegistry *metrics.Registry,
) HoldingsApp {
	return holdingsAppHandler{
		PriceRepository:     priceRepository,
		CandidateRepository: candidateRepository,
		HoldingsRepository:  holdingsRepository,
		Settings:            settings,
		Metrics:             metricsRegistry,
	}
}

func (h holdingsAppHandler) resolveSettings(in BuildInput) (Settings, error) {
	s := h.Settings
	if in.EndDate != nil {
		s.EndDate = *in.EndDate
	}
	if in.Notional != nil {
		s.Notional = *in.Notional
	}
	if in.PriceLookup != nil {
		s.PriceLookup = l3_service.PriceLookupMode(*in.PriceLookup)
	}
	if in.FilterExpression != nil {
		s.FilterExpression = *in.FilterExpression
	}
	if s.PriceLookup == "" {
		s.PriceLookup = l3_service.PriceLookupExact
	}

	if !s.Notional.IsPositive() {
		return s, fmt.Errorf("%w: notional must be positive, got %s", ErrInvalidInput, s.Notional.String())
	}
	if !s.PriceLookup.Valid() {
		return s, fmt.Errorf("%w: unknown price lookup %q", ErrInvalidInput, s.PriceLookup)
	}
	if s.EndDate.IsZero() {
		return s, fmt.Errorf("%w: end date is required", ErrInvalidInput)
	}
	return s, nil
}

func (h holdingsAppHandler) Schedule(ctx context.Context, endDate *time.Time) (*domain.RebalanceSchedule, error) {
	end := h.Settings.EndDate
	if endDate != nil {
		end = *endDate
	}
	candidates, err := h.CandidateRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	schedule, err := domain.ScheduleFromCandidates(candidates, end)
	if err != nil {
		return nil, fmt.Errorf("failed to build rebalance schedule: %w", err)
	}
	return schedule, nil
}

// Build loads prices and candidates, builds holdings for the whole
// schedule and optionally writes them out
func (h holdingsAppHandler) Build(ctx context.Context, in BuildInput) (*l3_service.BuildResult, error) {
	log := logger.FromContext(ctx)
	profile := domain.GetProfile(ctx)

	settings, err := h.resolveSettings(in)
	if err != nil {
		return nil, err
	}
	rule, err := l2_service.NewExpressionRule(settings.FilterExpression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	_, endSpan := profile.StartSpan("load inputs")
	priceTable, err := h.PriceRepository.GetPriceTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	candidates, err := h.CandidateRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	endSpan()

	priceStore, err := l1_service.NewPriceStore(*priceTable)
	if err != nil {
		return nil, fmt.Errorf("failed to build price store: %w", err)
	}
	candidateTable, err := l1_service.NewCandidateTable(candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate table: %w", err)
	}
	schedule, err := domain.ScheduleFromCandidates(candidates, settings.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to build rebalance schedule: %w", err)
	}
	log.Infow(
		"loaded inputs",
		"tradingDays", priceTable.Len(),
		"securities", len(priceTable.Securities),
		"candidates", len(candidates),
		"rebalanceDates", len(schedule.Dates),
	)

	portfolioService := l3_service.NewPortfolioService(
		priceStore,
		candidateTable,
		*schedule,
		l2_service.NewCandidateFilter(priceStore, *schedule, rule, settings.FirstWindowMonths),
		l2_service.NewWeightRenormalizer(nil),
		l3_service.NewQuantityConverter(),
		l3_service.BuildOptions{
			Notional:    settings.Notional,
			Workers:     settings.Workers,
			PriceLookup: settings.PriceLookup,
			Metrics:     h.Metrics,
		},
	)

	result, err := portfolioService.Build(ctx)
	if err != nil {
		return nil, err
	}

	if in.Persist && h.HoldingsRepository != nil {
		_, endSpan := profile.StartSpan("write holdings")
		err = h.HoldingsRepository.Add(ctx, result.RunID, result.Holdings())
		endSpan()
		if err != nil {
			return nil, fmt.Errorf("failed to write holdings: %w", err)
		}
	}

	return result, nil
}

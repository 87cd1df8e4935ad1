package l3_service

import (
	"context"
	"errors"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/metrics"
	l1_service "holdingsbuilder/internal/service/l1"
	mock_l1_service "holdingsbuilder/internal/service/l1/mocks"
	l2_service "holdingsbuilder/internal/service/l2"
	mock_l2_service "holdingsbuilder/internal/service/l2/mocks"
	"holdingsbuilder/internal/util"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type portfolioFixture struct {
	priceStore     l1_service.PriceStore
	candidateTable l1_service.CandidateTable
	schedule       domain.RebalanceSchedule
}

func newPortfolioFixture(t *testing.T, candidates []domain.Candidate) portfolioFixture {
	p := util.FloatPointer
	table := domain.PriceTable{
		Dates: []time.Time{
			util.NewDate(2012, 7, 31),
			util.NewDate(2012, 8, 6),
			util.NewDate(2012, 8, 31),
			util.NewDate(2012, 9, 28),
		},
		Securities: []string{"X", "T2", "Y", "Z", "W"},
		Prices: [][]*float64{
			{p(10), p(20), p(5), p(4), p(8)},
			{p(10), p(20), nil, p(4), p(8)},
			{p(10), p(20), p(5), p(4), p(8)},
			{p(11), p(20), p(5), p(4), p(8)},
		},
	}
	priceStore, err := l1_service.NewPriceStore(table)
	require.NoError(t, err)

	candidateTable, err := l1_service.NewCandidateTable(candidates)
	require.NoError(t, err)

	schedule, err := domain.ScheduleFromCandidates(candidates, util.NewDate(2012, 11, 30))
	require.NoError(t, err)

	return portfolioFixture{
		priceStore:     priceStore,
		candidateTable: candidateTable,
		schedule:       *schedule,
	}
}

func (f portfolioFixture) service(t *testing.T, options BuildOptions) PortfolioService {
	rule, err := l2_service.NewExpressionRule("")
	require.NoError(t, err)
	if options.Notional.IsZero() {
		options.Notional = decimal.NewFromInt(10_000_000)
	}
	if options.Metrics == nil {
		options.Metrics = metrics.NewRegistry(nil)
	}

	return NewPortfolioService(
		f.priceStore,
		f.candidateTable,
		f.schedule,
		l2_service.NewCandidateFilter(f.priceStore, f.schedule, rule, 0),
		l2_service.NewWeightRenormalizer(nil),
		NewQuantityConverter(),
		options,
	)
}

func defaultCandidates() []domain.Candidate {
	aug := util.NewDate(2012, 8, 31)
	sep := util.NewDate(2012, 9, 30)
	return []domain.Candidate{
		{RebalanceDate: aug, SecurityID: "X", Weight: 0.10, Industry: "Tech"},
		{RebalanceDate: aug, SecurityID: "T2", Weight: 0.20, Industry: "Tech"},
		{RebalanceDate: aug, SecurityID: "Y", Weight: 0.10, Industry: "Industrials"},
		{RebalanceDate: aug, SecurityID: "Z", Weight: 0.05, Industry: "Industrials"},
		{RebalanceDate: aug, SecurityID: "W", Weight: 0.15, Industry: "Industrials"},
		{RebalanceDate: aug, SecurityID: "N", Weight: 0.40, Industry: "Utilities"},
		{RebalanceDate: sep, SecurityID: "X", Weight: 0.50, Industry: "Tech"},
		{RebalanceDate: sep, SecurityID: "Z", Weight: 0.50, Industry: "Industrials"},
	}
}

func augustHoldings() []domain.Holding {
	aug := util.NewDate(2012, 8, 31)
	return []domain.Holding{
		{RebalanceDate: aug, SecurityID: "X", Weight: 0.10, Industry: "Tech", Filter: 1, Quantity: 100_000},
		{RebalanceDate: aug, SecurityID: "T2", Weight: 0.20, Industry: "Tech", Filter: 1, Quantity: 100_000},
		{RebalanceDate: aug, SecurityID: "Y", Weight: 0, Industry: "Industrials", Filter: 0, Quantity: 0},
		{RebalanceDate: aug, SecurityID: "Z", Weight: 0.075, Industry: "Industrials", Filter: 1, Quantity: 187_500},
		{RebalanceDate: aug, SecurityID: "W", Weight: 0.225, Industry: "Industrials", Filter: 1, Quantity: 281_250},
	}
}

func TestPortfolioService_BuildOnDate(t *testing.T) {
	ctx := context.Background()
	f := newPortfolioFixture(t, defaultCandidates())

	t.Run("full pipeline", func(t *testing.T) {
		result, err := f.service(t, BuildOptions{}).BuildOnDate(ctx, util.NewDate(2012, 8, 31))
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff(augustHoldings(), result.Holdings()))
		require.Equal(t, util.NewDate(2012, 8, 31), result.PriceDate)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Omission{{
					SecurityID: "N",
					Stage:      domain.StageFiltered,
					Reason:     "no price data in filter window",
				}},
				result.Omissions,
			),
		)
		require.True(t, decimal.NewFromInt(6_000_000).Equal(result.MarketValue), result.MarketValue.String())
		require.InDelta(t, 0.6, result.InvestedWeight, 1e-12)
		require.Equal(t, []string{"X", "T2", "Z", "W"}, result.Portfolio.HeldSecurities())
	})

	t.Run("ids without filter flags never reach the output", func(t *testing.T) {
		result, err := f.service(t, BuildOptions{}).BuildOnDate(ctx, util.NewDate(2012, 8, 31))
		require.NoError(t, err)
		for _, w := range result.Weights {
			require.NotEqual(t, "N", w.SecurityID)
		}
		for _, h := range result.Holdings() {
			require.NotEqual(t, "N", h.SecurityID)
		}
	})

	t.Run("exact lookup with no price row", func(t *testing.T) {
		_, err := f.service(t, BuildOptions{}).BuildOnDate(ctx, util.NewDate(2012, 9, 30))
		require.Error(t, err)

		dateErr := &domain.DateError{}
		require.True(t, errors.As(err, &dateErr))
		require.Equal(t, domain.StagePriceResolved, dateErr.Stage)
		require.Equal(t, util.NewDate(2012, 9, 30), dateErr.Date)

		noData := &domain.NoDataForDateError{}
		require.True(t, errors.As(err, &noData))
	})

	t.Run("previous trading day lookup", func(t *testing.T) {
		result, err := f.service(t, BuildOptions{PriceLookup: PriceLookupPreviousTradingDay}).
			BuildOnDate(ctx, util.NewDate(2012, 9, 30))
		require.NoError(t, err)

		sep := util.NewDate(2012, 9, 30)
		require.Equal(t, util.NewDate(2012, 9, 28), result.PriceDate)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Holding{
					{RebalanceDate: sep, SecurityID: "X", Weight: 0.5, Industry: "Tech", Filter: 1, Quantity: 454_545},
					{RebalanceDate: sep, SecurityID: "Z", Weight: 0.5, Industry: "Industrials", Filter: 1, Quantity: 1_250_000},
				},
				result.Holdings(),
			),
		)
	})

	t.Run("fully filtered group fails the date", func(t *testing.T) {
		aug := util.NewDate(2012, 8, 31)
		g := newPortfolioFixture(t, []domain.Candidate{
			{RebalanceDate: aug, SecurityID: "X", Weight: 0.5, Industry: "Tech"},
			{RebalanceDate: aug, SecurityID: "Y", Weight: 0.5, Industry: "Industrials"},
		})
		_, err := g.service(t, BuildOptions{}).BuildOnDate(ctx, aug)

		dateErr := &domain.DateError{}
		require.True(t, errors.As(err, &dateErr))
		require.Equal(t, domain.StageRenormalized, dateErr.Stage)
		degenerate := &domain.DegenerateGroupError{}
		require.True(t, errors.As(err, &degenerate))
		require.Equal(t, []string{"Industrials"}, degenerate.Groups)
	})

	t.Run("missing lookup price is a per security omission", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		filter := mock_l2_service.NewMockCandidateFilter(ctrl)
		sep := util.NewDate(2012, 9, 30)
		g := newPortfolioFixture(t, []domain.Candidate{
			{RebalanceDate: sep, SecurityID: "X", Weight: 0.5, Industry: "Tech"},
			{RebalanceDate: sep, SecurityID: "ghost", Weight: 0.5, Industry: "Tech"},
		})
		filter.EXPECT().
			FilterOnDate(sep, []string{"X", "ghost"}).
			Return(domain.FilterFlags{"X": 1, "ghost": 1}, nil)

		svc := NewPortfolioService(
			g.priceStore,
			g.candidateTable,
			g.schedule,
			filter,
			l2_service.NewWeightRenormalizer(nil),
			NewQuantityConverter(),
			BuildOptions{
				Notional:    decimal.NewFromInt(1_000),
				PriceLookup: PriceLookupPreviousTradingDay,
				Metrics:     metrics.NewRegistry(nil),
			},
		)
		result, err := svc.BuildOnDate(ctx, sep)
		require.NoError(t, err)

		require.Equal(t, []domain.Holding{
			{RebalanceDate: sep, SecurityID: "X", Weight: 0.5, Industry: "Tech", Filter: 1, Quantity: 45},
		}, result.Holdings())
		require.Len(t, result.Omissions, 1)
		require.Equal(t, "ghost", result.Omissions[0].SecurityID)
		require.Equal(t, domain.StagePriceResolved, result.Omissions[0].Stage)
	})

	t.Run("non finite lookup price is a per security omission", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		filter := mock_l2_service.NewMockCandidateFilter(ctrl)
		store := mock_l1_service.NewMockPriceStore(ctrl)
		sep := util.NewDate(2012, 9, 30)
		g := newPortfolioFixture(t, []domain.Candidate{
			{RebalanceDate: sep, SecurityID: "X", Weight: 0.4, Industry: "Tech"},
			{RebalanceDate: sep, SecurityID: "nan", Weight: 0.3, Industry: "Tech"},
			{RebalanceDate: sep, SecurityID: "inf", Weight: 0.3, Industry: "Tech"},
		})
		filter.EXPECT().
			FilterOnDate(sep, []string{"X", "nan", "inf"}).
			Return(domain.FilterFlags{"X": 1, "nan": 1, "inf": 1}, nil)
		store.EXPECT().
			PriceOnDate(sep).
			Return(domain.PriceRow{
				Name: domain.PriceRowName,
				Date: sep,
				Prices: map[string]float64{
					"X":   10,
					"nan": math.NaN(),
					"inf": math.Inf(1),
				},
			}, nil)

		svc := NewPortfolioService(
			store,
			g.candidateTable,
			g.schedule,
			filter,
			l2_service.NewWeightRenormalizer(nil),
			NewQuantityConverter(),
			BuildOptions{
				Notional: decimal.NewFromInt(1_000),
				Metrics:  metrics.NewRegistry(nil),
			},
		)
		result, err := svc.BuildOnDate(ctx, sep)
		require.NoError(t, err)

		require.Equal(t, []domain.Holding{
			{RebalanceDate: sep, SecurityID: "X", Weight: 0.4, Industry: "Tech", Filter: 1, Quantity: 40},
		}, result.Holdings())
		require.True(t, result.MarketValue.Equal(decimal.NewFromInt(400)))
		require.Len(t, result.Omissions, 2)
		for i, id := range []string{"nan", "inf"} {
			require.Equal(t, id, result.Omissions[i].SecurityID)
			require.Equal(t, domain.StagePriceResolved, result.Omissions[i].Stage)
		}
	})
}

func TestPortfolioService_Build(t *testing.T) {
	ctx := context.Background()
	f := newPortfolioFixture(t, defaultCandidates())

	t.Run("failed dates do not stop the run", func(t *testing.T) {
		result, err := f.service(t, BuildOptions{}).Build(ctx)
		require.NoError(t, err)

		require.NotEqual(t, "", result.RunID.String())
		require.Len(t, result.Dates, 1)
		require.Equal(t, "", cmp.Diff(augustHoldings(), result.Holdings()))

		require.Len(t, result.Failures, 1)
		require.Equal(t, util.NewDate(2012, 9, 30), result.Failures[0].Date)
		require.Equal(t, domain.StagePriceResolved, result.Failures[0].Stage)
	})

	t.Run("parallel matches sequential", func(t *testing.T) {
		sequential, err := f.service(t, BuildOptions{Workers: 1, PriceLookup: PriceLookupPreviousTradingDay}).Build(ctx)
		require.NoError(t, err)
		parallel, err := f.service(t, BuildOptions{Workers: 8, PriceLookup: PriceLookupPreviousTradingDay}).Build(ctx)
		require.NoError(t, err)

		require.Len(t, sequential.Dates, 2)
		require.Equal(t, "", cmp.Diff(sequential.Holdings(), parallel.Holdings()))
		for i := range sequential.Dates {
			require.Equal(t, sequential.Dates[i].Date, parallel.Dates[i].Date)
			require.Equal(t, "", cmp.Diff(sequential.Dates[i].Omissions, parallel.Dates[i].Omissions))
		}
	})

	t.Run("batch matches single date", func(t *testing.T) {
		svc := f.service(t, BuildOptions{PriceLookup: PriceLookupPreviousTradingDay})
		all, err := svc.Build(ctx)
		require.NoError(t, err)

		for _, d := range all.Dates {
			single, err := svc.BuildOnDate(ctx, d.Date)
			require.NoError(t, err)
			require.Equal(t, "", cmp.Diff(single.Holdings(), d.Holdings()))
		}
	})

	t.Run("filter failure on one date", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		filter := mock_l2_service.NewMockCandidateFilter(ctrl)
		aug := util.NewDate(2012, 8, 31)
		sep := util.NewDate(2012, 9, 30)

		filter.EXPECT().
			FilterOnDate(aug, gomock.Any()).
			Return(nil, &domain.NoDataForDateError{Date: aug, Requirement: "window prices"})
		filter.EXPECT().
			FilterOnDate(sep, []string{"X", "Z"}).
			Return(domain.FilterFlags{"X": 1, "Z": 1}, nil)

		svc := NewPortfolioService(
			f.priceStore,
			f.candidateTable,
			f.schedule,
			filter,
			l2_service.NewWeightRenormalizer(nil),
			NewQuantityConverter(),
			BuildOptions{
				Notional:    decimal.NewFromInt(10_000_000),
				PriceLookup: PriceLookupPreviousTradingDay,
				Workers:     2,
				Metrics:     metrics.NewRegistry(nil),
			},
		)
		result, err := svc.Build(ctx)
		require.NoError(t, err)

		require.Len(t, result.Failures, 1)
		require.Equal(t, aug, result.Failures[0].Date)
		require.Equal(t, domain.StageFiltered, result.Failures[0].Stage)
		require.Len(t, result.Dates, 1)
		require.Equal(t, sep, result.Dates[0].Date)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := f.service(t, BuildOptions{}).Build(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("profile spans", func(t *testing.T) {
		profile, endProfile := domain.NewProfile()
		_, err := f.service(t, BuildOptions{Workers: 2}).Build(domain.NewCtxWithProfile(ctx, profile))
		require.NoError(t, err)
		endProfile()
		require.Len(t, profile.Spans, 2)
	})
}

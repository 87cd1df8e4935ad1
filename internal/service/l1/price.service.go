package l1_service

import (
	"fmt"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"sort"
	"time"
)

/**

PriceStore is the read side of the price history. it is built once
from whatever loader produced the table and never mutated, so the
rebalance workers can share one instance without locking.

lookups are exact. if a caller wants "most recent trading day" it has
to ask for it explicitly with LastTradingDayOnOrBefore

*/

type PriceStore interface {
	WindowPrices(windowEnd, windowStart time.Time) (*domain.PriceTable, error)
	PriceOnDate(date time.Time) (domain.PriceRow, error)
	LastTradingDayOnOrBefore(date time.Time, maxLookbackDays int) (time.Time, bool)
	Securities() []string
}

type priceStoreHandler struct {
	table domain.PriceTable
	// date -> row index
	rowByDate map[string]int
}

func NewPriceStore(table domain.PriceTable) (PriceStore, error) {
	if len(table.Prices) != len(table.Dates) {
		return nil, fmt.Errorf("price table has %d dates but %d rows", len(table.Dates), len(table.Prices))
	}
	rowByDate := map[string]int{}
	for i, d := range table.Dates {
		if i > 0 && !d.After(table.Dates[i-1]) {
			return nil, fmt.Errorf("price table dates must be ascending and distinct, got %s after %s", d.Format(time.DateOnly), table.Dates[i-1].Format(time.DateOnly))
		}
		if len(table.Prices[i]) != len(table.Securities) {
			return nil, fmt.Errorf("price row %s has %d values, expected %d", d.Format(time.DateOnly), len(table.Prices[i]), len(table.Securities))
		}
		for col, p := range table.Prices[i] {
			if p != nil && !util.IsFinite(*p) {
				return nil, fmt.Errorf("price of %s on %s is %f", table.Securities[col], d.Format(time.DateOnly), *p)
			}
		}
		rowByDate[d.Format(time.DateOnly)] = i
	}

	return priceStoreHandler{
		table:     table,
		rowByDate: rowByDate,
	}, nil
}

// WindowPrices returns every row dated within [windowStart, windowEnd],
// both ends included. No rows in range is a valid, empty result.
func (h priceStoreHandler) WindowPrices(windowEnd, windowStart time.Time) (*domain.PriceTable, error) {
	if windowStart.After(windowEnd) {
		return nil, fmt.Errorf("invalid price window: start %s is after end %s", windowStart.Format(time.DateOnly), windowEnd.Format(time.DateOnly))
	}

	dates := h.table.Dates
	lo := sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(windowStart)
	})
	hi := sort.Search(len(dates), func(i int) bool {
		return dates[i].After(windowEnd)
	})

	out := &domain.PriceTable{
		Dates:      []time.Time{},
		Securities: h.Securities(),
		Prices:     [][]*float64{},
	}
	if lo < hi {
		// capped so appends by the caller never reach the store
		out.Dates = dates[lo:hi:hi]
		out.Prices = h.table.Prices[lo:hi:hi]
	}

	return out, nil
}

// PriceOnDate returns the row dated exactly on date, named "price"
func (h priceStoreHandler) PriceOnDate(date time.Time) (domain.PriceRow, error) {
	i, ok := h.rowByDate[date.Format(time.DateOnly)]
	if !ok {
		return domain.PriceRow{}, fmt.Errorf("price row for %s: %w", date.Format(time.DateOnly), domain.ErrKeyNotFound)
	}

	row := domain.PriceRow{
		Name:   domain.PriceRowName,
		Date:   h.table.Dates[i],
		Prices: map[string]float64{},
	}
	for col, p := range h.table.Prices[i] {
		if p != nil {
			row.Prices[h.table.Securities[col]] = *p
		}
	}

	return row, nil
}

// LastTradingDayOnOrBefore walks back at most maxLookbackDays
// calendar days looking for a date that has a price row
func (h priceStoreHandler) LastTradingDayOnOrBefore(date time.Time, maxLookbackDays int) (time.Time, bool) {
	d := date
	for numTries := 0; numTries <= maxLookbackDays; numTries++ {
		if i, ok := h.rowByDate[d.Format(time.DateOnly)]; ok {
			return h.table.Dates[i], true
		}
		d = d.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}

func (h priceStoreHandler) Securities() []string {
	return append([]string{}, h.table.Securities...)
}

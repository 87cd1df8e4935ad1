package domain

import (
	"sort"
	"time"
)

// PriceRowName is the name every exact-date price lookup carries,
// regardless of how the source table labels its columns
const PriceRowName = "price"

type AssetPrice struct {
	Symbol string
	Price  float64
	Date   time.Time
}

// PriceTable is a dense date x security price matrix. Rows are
// trading dates in ascending order, columns keep the order the
// securities were loaded in. A nil entry means the security did
// not trade that day.
type PriceTable struct {
	Dates      []time.Time
	Securities []string
	Prices     [][]*float64
}

func (t PriceTable) Len() int {
	return len(t.Dates)
}

func (t PriceTable) ColumnIndex(securityID string) (int, bool) {
	for i, s := range t.Securities {
		if s == securityID {
			return i, true
		}
	}
	return 0, false
}

// Series returns the column for securityID. ok is false when
// the table has no such column.
func (t PriceTable) Series(securityID string) (series PriceSeries, ok bool) {
	col, ok := t.ColumnIndex(securityID)
	if !ok {
		return PriceSeries{}, false
	}
	series = PriceSeries{
		SecurityID: securityID,
		Dates:      t.Dates,
		Prices:     make([]*float64, len(t.Dates)),
	}
	for i, row := range t.Prices {
		series.Prices[i] = row[col]
	}
	return series, true
}

// Restrict keeps only the requested columns, in the table's
// original column order. Unknown ids are ignored.
func (t PriceTable) Restrict(securityIDs []string) PriceTable {
	wanted := map[string]bool{}
	for _, id := range securityIDs {
		wanted[id] = true
	}

	cols := []int{}
	out := PriceTable{
		Dates:      t.Dates,
		Securities: []string{},
		Prices:     make([][]*float64, len(t.Prices)),
	}
	for i, s := range t.Securities {
		if wanted[s] {
			cols = append(cols, i)
			out.Securities = append(out.Securities, s)
		}
	}
	for r, row := range t.Prices {
		newRow := make([]*float64, len(cols))
		for i, c := range cols {
			newRow[i] = row[c]
		}
		out.Prices[r] = newRow
	}

	return out
}

// PriceSeries is one security's prices over a window. Dates and
// Prices are aligned; nil prices are missing.
type PriceSeries struct {
	SecurityID string
	Dates      []time.Time
	Prices     []*float64
}

// Observed returns the non-missing prices in date order
func (s PriceSeries) Observed() []float64 {
	out := []float64{}
	for _, p := range s.Prices {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (s PriceSeries) Empty() bool {
	for _, p := range s.Prices {
		if p != nil {
			return false
		}
	}
	return true
}

// PriceRow is the result of an exact-date lookup. Securities
// without a price on Date are absent from Prices.
type PriceRow struct {
	Name   string
	Date   time.Time
	Prices map[string]float64
}

func (r PriceRow) Get(securityID string) (float64, bool) {
	p, ok := r.Prices[securityID]
	return p, ok
}

// PriceTableFromAssetPrices pivots long-format prices into a dense
// table. Columns follow first appearance in prices.
func PriceTableFromAssetPrices(prices []AssetPrice) PriceTable {
	colBySymbol := map[string]int{}
	securities := []string{}
	dateSet := map[time.Time]bool{}
	dates := []time.Time{}
	for _, p := range prices {
		if _, ok := colBySymbol[p.Symbol]; !ok {
			colBySymbol[p.Symbol] = len(securities)
			securities = append(securities, p.Symbol)
		}
		if !dateSet[p.Date] {
			dateSet[p.Date] = true
			dates = append(dates, p.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	rowByDate := map[time.Time]int{}
	rows := make([][]*float64, len(dates))
	for i, d := range dates {
		rowByDate[d] = i
		rows[i] = make([]*float64, len(securities))
	}
	for _, p := range prices {
		price := p.Price
		rows[rowByDate[p.Date]][colBySymbol[p.Symbol]] = &price
	}

	return PriceTable{
		Dates:      dates,
		Securities: securities,
		Prices:     rows,
	}
}

// AssetPrices flattens the table back to long format, skipping
// missing cells. Output is ordered by date, then column.
func (t PriceTable) AssetPrices() []AssetPrice {
	out := []AssetPrice{}
	for r, row := range t.Prices {
		for c, p := range row {
			if p == nil {
				continue
			}
			out = append(out, AssetPrice{
				Symbol: t.Securities[c],
				Price:  *p,
				Date:   t.Dates[r],
			})
		}
	}
	return out
}

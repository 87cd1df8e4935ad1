package repository

import (
	"context"
	"fmt"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// PriceRepository loads the full price history as a dense table
type PriceRepository interface {
	GetPriceTable(ctx context.Context) (*domain.PriceTable, error)
}

// CsvPriceDateColumn is the date column of a wide price file. Every
// other column is a security id.
const CsvPriceDateColumn = "tradeDate"

type csvPriceRepositoryHandler struct {
	Path string
}

func NewCsvPriceRepository(path string) PriceRepository {
	return csvPriceRepositoryHandler{
		Path: path,
	}
}

// GetPriceTable reads a wide file,
//
//	tradeDate,000001.SZ,600000.SH
//	2012-07-31,9.5,
//
// where an empty cell or NaN is a missing price. Rows may come in
// any order; they are sorted by date.
func (h csvPriceRepositoryHandler) GetPriceTable(ctx context.Context) (*domain.PriceTable, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price file: %w", err)
	}
	defer f.Close()

	records, err := gocsv.LazyCSVReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read price file %s: %w", h.Path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("price file %s is empty", h.Path)
	}

	header := records[0]
	dateCol := -1
	securities := []string{}
	securityCols := []int{}
	for i, col := range header {
		col = strings.TrimSpace(col)
		if col == CsvPriceDateColumn {
			dateCol = i
			continue
		}
		securities = append(securities, col)
		securityCols = append(securityCols, i)
	}
	if dateCol < 0 {
		return nil, fmt.Errorf("price file %s has no %s column", h.Path, CsvPriceDateColumn)
	}

	type row struct {
		date   time.Time
		prices []*float64
	}
	rows := []row{}
	for lineNo, record := range records[1:] {
		date, err := util.ParseDate(strings.TrimSpace(record[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("price file line %d: %w", lineNo+2, err)
		}
		r := row{
			date:   date,
			prices: make([]*float64, len(securityCols)),
		}
		for j, col := range securityCols {
			price, ok, err := parsePrice(record[col])
			if err != nil {
				return nil, fmt.Errorf("price file line %d, %s: %w", lineNo+2, securities[j], err)
			}
			if ok {
				r.prices[j] = &price
			}
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].date.Before(rows[j].date)
	})

	table := &domain.PriceTable{
		Dates:      make([]time.Time, 0, len(rows)),
		Securities: securities,
		Prices:     make([][]*float64, 0, len(rows)),
	}
	for _, r := range rows {
		table.Dates = append(table.Dates, r.date)
		table.Prices = append(table.Prices, r.prices)
	}

	return table, nil
}

func parsePrice(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid price %q", s)
	}
	// NaN and ±Inf are missing cells
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, nil
	}
	return f, true, nil
}

package repository

import (
	"context"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCsvPriceRepository_GetPriceTable(t *testing.T) {
	ctx := context.Background()

	t.Run("wide file", func(t *testing.T) {
		path := writeFile(t, "prices.csv", `tradeDate,000702.SZ,600538.SH,halted.SH
2012-08-31,10.5,22,
2012/07/31,9.5,NaN,
2012-08-06,10,21,
`)
		table, err := NewCsvPriceRepository(path).GetPriceTable(ctx)
		require.NoError(t, err)

		require.Equal(t, []string{"000702.SZ", "600538.SH", "halted.SH"}, table.Securities)
		require.Equal(
			t,
			[]time.Time{util.NewDate(2012, 7, 31), util.NewDate(2012, 8, 6), util.NewDate(2012, 8, 31)},
			table.Dates,
		)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[][]*float64{
					{util.FloatPointer(9.5), nil, nil},
					{util.FloatPointer(10), util.FloatPointer(21), nil},
					{util.FloatPointer(10.5), util.FloatPointer(22), nil},
				},
				table.Prices,
			),
		)
	})

	t.Run("infinite cells are missing", func(t *testing.T) {
		path := writeFile(t, "prices.csv", `tradeDate,A,B,C
2012-08-31,inf,-Inf,+Infinity
2012-09-03,1,2,3
`)
		table, err := NewCsvPriceRepository(path).GetPriceTable(ctx)
		require.NoError(t, err)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[][]*float64{
					{nil, nil, nil},
					{util.FloatPointer(1), util.FloatPointer(2), util.FloatPointer(3)},
				},
				table.Prices,
			),
		)
	})

	t.Run("no date column", func(t *testing.T) {
		path := writeFile(t, "prices.csv", "date,A\n2012-08-31,1\n")
		_, err := NewCsvPriceRepository(path).GetPriceTable(ctx)
		require.Error(t, err)
	})

	t.Run("bad price", func(t *testing.T) {
		path := writeFile(t, "prices.csv", "tradeDate,A\n2012-08-31,abc\n")
		_, err := NewCsvPriceRepository(path).GetPriceTable(ctx)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewCsvPriceRepository(filepath.Join(t.TempDir(), "nope.csv")).GetPriceTable(ctx)
		require.Error(t, err)
	})
}

func TestCsvCandidateRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("candidate export", func(t *testing.T) {
		path := writeFile(t, "candidates.csv", `tiaoCangDate,secID,weight,INDUSTRY
2012/8/31,000702.SZ,0.1,Tech
2012-08-31,600538.SH,0.05,Industrials
2012-09-28,000702.SZ,0.2,Tech
`)
		candidates, err := NewCsvCandidateRepository(path).List(ctx)
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.Candidate{
					{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "000702.SZ", Weight: 0.1, Industry: "Tech"},
					{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "600538.SH", Weight: 0.05, Industry: "Industrials"},
					{RebalanceDate: util.NewDate(2012, 9, 28), SecurityID: "000702.SZ", Weight: 0.2, Industry: "Tech"},
				},
				candidates,
			),
		)
	})

	t.Run("bad date", func(t *testing.T) {
		path := writeFile(t, "candidates.csv", "tiaoCangDate,secID,weight,INDUSTRY\nlast month,A,0.1,Tech\n")
		_, err := NewCsvCandidateRepository(path).List(ctx)
		require.Error(t, err)
	})
}

func TestCsvHoldingsRepository_Add(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "holdings.csv")

	err := NewCsvHoldingsRepository(path).Add(ctx, uuid.New(), []domain.Holding{
		{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "X", Weight: 0.1, Industry: "Tech", Filter: 1, Quantity: 100000},
		{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "Y", Weight: 0, Industry: "Industrials", Filter: 0, Quantity: 0},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(
		t,
		"tiaoCangDate,secID,weight,INDUSTRY,filters,quantity\n"+
			"2012-08-31,X,0.1,Tech,1,100000\n"+
			"2012-08-31,Y,0,Industrials,0,0\n",
		string(raw),
	)
}

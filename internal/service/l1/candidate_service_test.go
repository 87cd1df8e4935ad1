package l1_service

import (
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestCandidates() []domain.Candidate {
	d1 := util.NewDate(2012, 7, 31)
	d2 := util.NewDate(2012, 8, 31)
	return []domain.Candidate{
		{RebalanceDate: d2, SecurityID: "X", Weight: 0.1, Industry: "Tech"},
		{RebalanceDate: d2, SecurityID: "Y", Weight: 0.1, Industry: "Industrials"},
		{RebalanceDate: d2, SecurityID: "Z", Weight: 0.05, Industry: "Industrials"},
		{RebalanceDate: d1, SecurityID: "X", Weight: 0.2, Industry: "Tech"},
	}
}

func TestCandidateTable_CandidatesOnDate(t *testing.T) {
	table, err := NewCandidateTable(newTestCandidates())
	require.NoError(t, err)

	t.Run("keeps subset order and skips unknown ids", func(t *testing.T) {
		got := table.CandidatesOnDate(util.NewDate(2012, 8, 31), []string{"Z", "unknown", "X"})
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.CandidateWeight{
					{SecurityID: "Z", Weight: 0.05, Industry: "Industrials"},
					{SecurityID: "X", Weight: 0.1, Industry: "Tech"},
				},
				got,
			),
		)
	})

	t.Run("restricted to date", func(t *testing.T) {
		got := table.CandidatesOnDate(util.NewDate(2012, 7, 31), []string{"X", "Y"})
		require.Equal(t, []domain.CandidateWeight{{SecurityID: "X", Weight: 0.2, Industry: "Tech"}}, got)
	})

	t.Run("unknown date", func(t *testing.T) {
		got := table.CandidatesOnDate(util.NewDate(2012, 9, 30), []string{"X"})
		require.Empty(t, got)
	})
}

func TestCandidateTable_Dates(t *testing.T) {
	table, err := NewCandidateTable(newTestCandidates())
	require.NoError(t, err)

	require.Equal(t, []time.Time{util.NewDate(2012, 7, 31), util.NewDate(2012, 8, 31)}, table.RebalanceDates())
	require.Equal(t, []string{"X", "Y", "Z"}, table.SecurityIDsOnDate(util.NewDate(2012, 8, 31)))
}

func TestNewCandidateTable(t *testing.T) {
	t.Run("duplicate key", func(t *testing.T) {
		candidates := newTestCandidates()
		candidates = append(candidates, candidates[0])
		_, err := NewCandidateTable(candidates)
		require.Error(t, err)
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := NewCandidateTable([]domain.Candidate{
			{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "X", Weight: -0.1},
		})
		require.Error(t, err)
	})

	t.Run("weights outside [0, 1]", func(t *testing.T) {
		for _, w := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1.5} {
			_, err := NewCandidateTable([]domain.Candidate{
				{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "X", Weight: w},
			})
			require.Error(t, err, "weight %f", w)
		}
	})

	t.Run("weight bounds are allowed", func(t *testing.T) {
		_, err := NewCandidateTable([]domain.Candidate{
			{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "X", Weight: 0},
			{RebalanceDate: util.NewDate(2012, 8, 31), SecurityID: "Y", Weight: 1},
		})
		require.NoError(t, err)
	})
}

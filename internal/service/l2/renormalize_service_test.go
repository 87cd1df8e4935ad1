package l2_service

import (
	"errors"
	"holdingsbuilder/internal/domain"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWeightRenormalizer_Renormalize(t *testing.T) {
	weights := []domain.CandidateWeight{
		{SecurityID: "X", Weight: 0.10, Industry: "Tech"},
		{SecurityID: "T2", Weight: 0.20, Industry: "Tech"},
		{SecurityID: "Y", Weight: 0.10, Industry: "Industrials"},
		{SecurityID: "Z", Weight: 0.05, Industry: "Industrials"},
		{SecurityID: "W", Weight: 0.15, Industry: "Industrials"},
		{SecurityID: "noPrices", Weight: 0.40, Industry: "Utilities"},
	}
	flags := domain.FilterFlags{
		"X":  1,
		"T2": 1,
		"Y":  0,
		"Z":  1,
		"W":  1,
	}

	t.Run("group proportional", func(t *testing.T) {
		r := NewWeightRenormalizer(nil)
		out, err := r.Renormalize(weights, flags)
		require.NoError(t, err)

		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.FinalWeight{
					{SecurityID: "X", OriginalWeight: 0.10, Weight: 0.10, Industry: "Tech", Filter: 1},
					{SecurityID: "T2", OriginalWeight: 0.20, Weight: 0.20, Industry: "Tech", Filter: 1},
					{SecurityID: "Y", OriginalWeight: 0.10, Weight: 0, Industry: "Industrials", Filter: 0},
					{SecurityID: "Z", OriginalWeight: 0.05, Weight: 0.075, Industry: "Industrials", Filter: 1},
					{SecurityID: "W", OriginalWeight: 0.15, Weight: 0.225, Industry: "Industrials", Filter: 1},
				},
				out,
			),
		)
	})

	t.Run("group weight is conserved", func(t *testing.T) {
		r := NewWeightRenormalizer(GroupProportional{})
		out, err := r.Renormalize(weights, flags)
		require.NoError(t, err)

		before := map[string]float64{}
		for _, w := range weights {
			if _, ok := flags[w.SecurityID]; ok {
				before[w.Industry] += w.Weight
			}
		}
		after := map[string]float64{}
		for _, row := range out {
			after[row.Industry] += row.Weight
		}
		require.Len(t, after, len(before))
		for group, sum := range before {
			require.InDelta(t, sum, after[group], 1e-12, group)
		}
	})

	t.Run("ids without a flag are left out", func(t *testing.T) {
		out, err := NewWeightRenormalizer(nil).Renormalize(weights, flags)
		require.NoError(t, err)
		for _, row := range out {
			require.NotEqual(t, "noPrices", row.SecurityID)
		}
	})

	t.Run("flags without a candidate are ignored", func(t *testing.T) {
		out, err := NewWeightRenormalizer(nil).Renormalize(
			[]domain.CandidateWeight{{SecurityID: "X", Weight: 0.1, Industry: "Tech"}},
			domain.FilterFlags{"X": 1, "other": 1},
		)
		require.NoError(t, err)
		require.Equal(t, []domain.FinalWeight{
			{SecurityID: "X", OriginalWeight: 0.1, Weight: 0.1, Industry: "Tech", Filter: 1},
		}, out)
	})

	t.Run("fully dropped group", func(t *testing.T) {
		_, err := NewWeightRenormalizer(nil).Renormalize(
			weights,
			domain.FilterFlags{"X": 0, "T2": 0, "Y": 0, "Z": 1, "W": 1},
		)
		require.Error(t, err)

		degenerate := &domain.DegenerateGroupError{}
		require.True(t, errors.As(err, &degenerate))
		require.Equal(t, []string{"Tech"}, degenerate.Groups)
	})

	t.Run("zero weight survivors", func(t *testing.T) {
		_, err := NewWeightRenormalizer(nil).Renormalize(
			[]domain.CandidateWeight{
				{SecurityID: "A", Weight: 0.1, Industry: "Energy"},
				{SecurityID: "B", Weight: 0, Industry: "Energy"},
			},
			domain.FilterFlags{"A": 0, "B": 1},
		)
		degenerate := &domain.DegenerateGroupError{}
		require.True(t, errors.As(err, &degenerate))
	})

	t.Run("non finite weight is an error", func(t *testing.T) {
		for _, w := range []float64{math.NaN(), math.Inf(1)} {
			_, err := NewWeightRenormalizer(nil).Renormalize(
				[]domain.CandidateWeight{
					{SecurityID: "A", Weight: w, Industry: "Energy"},
					{SecurityID: "B", Weight: 0.1, Industry: "Energy"},
				},
				domain.FilterFlags{"A": 1, "B": 0},
			)
			require.Error(t, err, "weight %f", w)
		}
	})

	t.Run("custom policy", func(t *testing.T) {
		called := false
		policy := policyFunc(func(rows []domain.FinalWeight) ([]domain.FinalWeight, error) {
			called = true
			return rows, nil
		})
		out, err := NewWeightRenormalizer(policy).Renormalize(weights, flags)
		require.NoError(t, err)
		require.True(t, called)
		require.Len(t, out, 5)
		require.Equal(t, 0.10, out[2].Weight)
	})
}

type policyFunc func(rows []domain.FinalWeight) ([]domain.FinalWeight, error)

func (f policyFunc) Apply(rows []domain.FinalWeight) ([]domain.FinalWeight, error) {
	return f(rows)
}

package l2_service

import (
	"fmt"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"

	"github.com/shopspring/decimal"
)

// RenormalizationPolicy rewrites the weights of joined rows.
// Rows arrive with Weight == OriginalWeight and Filter set.
type RenormalizationPolicy interface {
	Apply(rows []domain.FinalWeight) ([]domain.FinalWeight, error)
}

type WeightRenormalizer interface {
	Renormalize(weights []domain.CandidateWeight, flags domain.FilterFlags) ([]domain.FinalWeight, error)
}

type weightRenormalizerHandler struct {
	Policy RenormalizationPolicy
}

func NewWeightRenormalizer(policy RenormalizationPolicy) WeightRenormalizer {
	if policy == nil {
		policy = GroupProportional{}
	}
	return weightRenormalizerHandler{
		Policy: policy,
	}
}

// Renormalize inner-joins weights with flags, in weights order, and
// hands the joined rows to the policy
func (h weightRenormalizerHandler) Renormalize(weights []domain.CandidateWeight, flags domain.FilterFlags) ([]domain.FinalWeight, error) {
	rows := []domain.FinalWeight{}
	for _, w := range weights {
		flag, ok := flags[w.SecurityID]
		if !ok {
			continue
		}
		rows = append(rows, domain.FinalWeight{
			SecurityID:     w.SecurityID,
			OriginalWeight: w.Weight,
			Weight:         w.Weight,
			Industry:       w.Industry,
			Filter:         flag,
		})
	}

	return h.Policy.Apply(rows)
}

// GroupProportional hands a dropped security's weight to the kept
// members of its industry, pro rata to their own weights. Each kept
// weight is scaled by groupOriginalSum / groupSurvivingSum, so the
// group's total is unchanged. Dropped rows end with weight 0.
type GroupProportional struct{}

func (GroupProportional) Apply(rows []domain.FinalWeight) ([]domain.FinalWeight, error) {
	original := map[string]decimal.Decimal{}
	surviving := map[string]decimal.Decimal{}
	groups := []string{}
	for _, row := range rows {
		if !util.IsFinite(row.OriginalWeight) {
			return nil, fmt.Errorf("weight of %s is %f", row.SecurityID, row.OriginalWeight)
		}
		w := decimal.NewFromFloat(row.OriginalWeight)
		if _, ok := original[row.Industry]; !ok {
			groups = append(groups, row.Industry)
			original[row.Industry] = decimal.Zero
			surviving[row.Industry] = decimal.Zero
		}
		original[row.Industry] = original[row.Industry].Add(w)
		if row.Filter == domain.FilterKeep {
			surviving[row.Industry] = surviving[row.Industry].Add(w)
		}
	}

	degenerate := []string{}
	for _, g := range groups {
		if surviving[g].IsZero() {
			degenerate = append(degenerate, g)
		}
	}
	if len(degenerate) > 0 {
		return nil, &domain.DegenerateGroupError{Groups: degenerate}
	}

	out := make([]domain.FinalWeight, 0, len(rows))
	for _, row := range rows {
		if row.Filter != domain.FilterKeep {
			row.Weight = 0
			out = append(out, row)
			continue
		}
		scaled := decimal.NewFromFloat(row.OriginalWeight).
			Mul(original[row.Industry]).
			Div(surviving[row.Industry])
		row.Weight = scaled.InexactFloat64()
		out = append(out, row)
	}

	return out, nil
}

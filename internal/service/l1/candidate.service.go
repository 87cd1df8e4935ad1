package l1_service

import (
	"fmt"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"sort"
	"time"
)

type CandidateTable interface {
	CandidatesOnDate(date time.Time, idSubset []string) []domain.CandidateWeight
	SecurityIDsOnDate(date time.Time) []string
	RebalanceDates() []time.Time
}

type candidateTableHandler struct {
	// date -> secID -> row
	rows map[string]map[string]domain.CandidateWeight
	// date -> secIDs in load order
	order map[string][]string
	dates []time.Time
}

func NewCandidateTable(candidates []domain.Candidate) (CandidateTable, error) {
	h := candidateTableHandler{
		rows:  map[string]map[string]domain.CandidateWeight{},
		order: map[string][]string{},
		dates: []time.Time{},
	}
	for _, c := range candidates {
		if !util.IsFinite(c.Weight) || c.Weight < 0 || c.Weight > 1 {
			return nil, fmt.Errorf("candidate %s on %s has weight %f, expected a value in [0, 1]", c.SecurityID, c.RebalanceDate.Format(time.DateOnly), c.Weight)
		}
		key := c.RebalanceDate.Format(time.DateOnly)
		if _, ok := h.rows[key]; !ok {
			h.rows[key] = map[string]domain.CandidateWeight{}
			h.dates = append(h.dates, c.RebalanceDate)
		}
		if _, ok := h.rows[key][c.SecurityID]; ok {
			return nil, fmt.Errorf("duplicate candidate %s on %s", c.SecurityID, key)
		}
		h.rows[key][c.SecurityID] = domain.CandidateWeight{
			SecurityID: c.SecurityID,
			Weight:     c.Weight,
			Industry:   c.Industry,
		}
		h.order[key] = append(h.order[key], c.SecurityID)
	}
	sort.Slice(h.dates, func(i, j int) bool {
		return h.dates[i].Before(h.dates[j])
	})

	return h, nil
}

// CandidatesOnDate intersects the date's candidates with idSubset,
// keeping idSubset's order. Ids with no candidate row are skipped.
func (h candidateTableHandler) CandidatesOnDate(date time.Time, idSubset []string) []domain.CandidateWeight {
	out := []domain.CandidateWeight{}
	rows, ok := h.rows[date.Format(time.DateOnly)]
	if !ok {
		return out
	}
	for _, id := range idSubset {
		if row, ok := rows[id]; ok {
			out = append(out, row)
		}
	}
	return out
}

func (h candidateTableHandler) SecurityIDsOnDate(date time.Time) []string {
	return append([]string{}, h.order[date.Format(time.DateOnly)]...)
}

func (h candidateTableHandler) RebalanceDates() []time.Time {
	return append([]time.Time{}, h.dates...)
}

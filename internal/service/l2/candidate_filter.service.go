package l2_service

import (
	"fmt"
	"holdingsbuilder/internal/domain"
	l1_service "holdingsbuilder/internal/service/l1"
	"holdingsbuilder/internal/util"
	"time"
)

// DefaultFirstWindowMonths is how far back the filter looks on the
// first rebalance date, which has no previous date to anchor to.
// One month matches a monthly schedule.
const DefaultFirstWindowMonths = 1

type CandidateFilter interface {
	FilterOnDate(date time.Time, idList []string) (domain.FilterFlags, error)
	Window(date time.Time) (start time.Time, end time.Time, err error)
}

type candidateFilterHandler struct {
	PriceStore        l1_service.PriceStore
	Schedule          domain.RebalanceSchedule
	Rule              FilterRule
	FirstWindowMonths int
}

func NewCandidateFilter(
	priceStore l1_service.PriceStore,
	schedule domain.RebalanceSchedule,
	rule FilterRule,
	firstWindowMonths int,
) CandidateFilter {
	if firstWindowMonths <= 0 {
		firstWindowMonths = DefaultFirstWindowMonths
	}
	return candidateFilterHandler{
		PriceStore:        priceStore,
		Schedule:          schedule,
		Rule:              rule,
		FirstWindowMonths: firstWindowMonths,
	}
}

// Window is [previous rebalance date, date]
func (h candidateFilterHandler) Window(date time.Time) (time.Time, time.Time, error) {
	if !h.Schedule.Contains(date) {
		return time.Time{}, time.Time{}, fmt.Errorf("%s is not a scheduled rebalance date", date.Format(time.DateOnly))
	}
	start, ok := h.Schedule.Previous(date)
	if !ok {
		start = util.AddMonths(date, -h.FirstWindowMonths)
	}
	return start, date, nil
}

// FilterOnDate flags each id in idList with FilterKeep or FilterDrop.
// Ids that have no price at all inside the window get no flag.
func (h candidateFilterHandler) FilterOnDate(date time.Time, idList []string) (domain.FilterFlags, error) {
	start, end, err := h.Window(date)
	if err != nil {
		return nil, err
	}

	window, err := h.PriceStore.WindowPrices(end, start)
	if err != nil {
		return nil, fmt.Errorf("failed to get filter window prices: %w", err)
	}
	if window.Len() == 0 {
		return nil, &domain.NoDataForDateError{
			Date:        date,
			Requirement: fmt.Sprintf("price rows between %s and %s", start.Format(time.DateOnly), end.Format(time.DateOnly)),
		}
	}
	restricted := window.Restrict(idList)

	flags := domain.FilterFlags{}
	for _, id := range idList {
		series, ok := restricted.Series(id)
		if !ok || series.Empty() {
			continue
		}
		keep, err := h.Rule.Keep(series)
		if err != nil {
			return nil, fmt.Errorf("failed to filter candidates on %s: %w", date.Format(time.DateOnly), err)
		}
		flags[id] = domain.FilterDrop
		if keep {
			flags[id] = domain.FilterKeep
		}
	}

	return flags, nil
}

package domain

import (
	"fmt"
	"sort"
	"time"
)

// RebalanceSchedule is the ascending list of rebalance dates a
// portfolio is rebuilt on
type RebalanceSchedule struct {
	Dates []time.Time
	End   time.Time
}

// NewRebalanceSchedule validates an explicit date list. Dates
// must be strictly ascending and the first one cannot be after
// end. Dates after end are cut off.
func NewRebalanceSchedule(dates []time.Time, end time.Time) (*RebalanceSchedule, error) {
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no rebalance dates", ErrMalformedSchedule)
	}
	for i := 1; i < len(dates); i++ {
		if dates[i].Equal(dates[i-1]) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrMalformedSchedule, dates[i].Format(time.DateOnly))
		}
		if dates[i].Before(dates[i-1]) {
			return nil, fmt.Errorf("%w: %s comes after %s", ErrMalformedSchedule, dates[i-1].Format(time.DateOnly), dates[i].Format(time.DateOnly))
		}
	}
	if end.Before(dates[0]) {
		return nil, fmt.Errorf(
			"%w: end date %s precedes first rebalance date %s",
			ErrMalformedSchedule,
			end.Format(time.DateOnly),
			dates[0].Format(time.DateOnly),
		)
	}

	out := []time.Time{}
	for _, d := range dates {
		if d.After(end) {
			break
		}
		out = append(out, d)
	}

	return &RebalanceSchedule{
		Dates: out,
		End:   end,
	}, nil
}

// ScheduleFromCandidates derives the schedule from the distinct
// rebalance dates in the candidate rows
func ScheduleFromCandidates(candidates []Candidate, end time.Time) (*RebalanceSchedule, error) {
	seen := map[time.Time]bool{}
	dates := []time.Time{}
	for _, c := range candidates {
		if !seen[c.RebalanceDate] {
			seen[c.RebalanceDate] = true
			dates = append(dates, c.RebalanceDate)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	return NewRebalanceSchedule(dates, end)
}

func (s RebalanceSchedule) index(date time.Time) int {
	i := sort.Search(len(s.Dates), func(i int) bool {
		return !s.Dates[i].Before(date)
	})
	if i < len(s.Dates) && s.Dates[i].Equal(date) {
		return i
	}
	return -1
}

func (s RebalanceSchedule) Contains(date time.Time) bool {
	return s.index(date) >= 0
}

// Previous returns the rebalance date before date. ok is false
// for the first date, or when date is not in the schedule.
func (s RebalanceSchedule) Previous(date time.Time) (prev time.Time, ok bool) {
	i := s.index(date)
	if i <= 0 {
		return time.Time{}, false
	}
	return s.Dates[i-1], true
}

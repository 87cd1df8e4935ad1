package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrKeyNotFound       = errors.New("key not found")
	ErrMalformedSchedule = errors.New("malformed rebalance schedule")
)

// NoDataForDateError means a rebalance date cannot be computed
// at all, e.g. the filter window is empty or the price lookup
// date is not in the price table
type NoDataForDateError struct {
	Date        time.Time
	Requirement string
}

func (e *NoDataForDateError) Error() string {
	return fmt.Sprintf("no data for %s: %s", e.Date.Format(time.DateOnly), e.Requirement)
}

// DegenerateGroupError is returned when every surviving member of
// an industry group has zero weight (usually because all of them
// were filtered out), so the group cannot be rescaled.
type DegenerateGroupError struct {
	Groups []string
}

func (e *DegenerateGroupError) Error() string {
	groups := append([]string{}, e.Groups...)
	sort.Strings(groups)
	return fmt.Sprintf("cannot renormalize groups with zero surviving weight: %s", strings.Join(groups, ", "))
}

// DateError ties a date-level failure to the rebalance date and
// the stage that produced it
type DateError struct {
	Date  time.Time
	Stage RebalanceStage
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("rebalance %s failed at %s: %s", e.Date.Format(time.DateOnly), e.Stage, e.Err.Error())
}

func (e *DateError) Unwrap() error {
	return e.Err
}

type RebalanceStage string

const (
	StageCandidatesLoaded   RebalanceStage = "CANDIDATES_LOADED"
	StageFiltered           RebalanceStage = "FILTERED"
	StageRenormalized       RebalanceStage = "RENORMALIZED"
	StagePriceResolved      RebalanceStage = "PRICE_RESOLVED"
	StageQuantitiesComputed RebalanceStage = "QUANTITIES_COMPUTED"
)

// Omission records a security dropped from a date's pipeline
// because some stage could not resolve data for it
type Omission struct {
	SecurityID string         `json:"secID"`
	Stage      RebalanceStage `json:"stage"`
	Reason     string         `json:"reason"`
}

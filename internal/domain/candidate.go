package domain

import "time"

type Candidate struct {
	RebalanceDate time.Time
	SecurityID    string
	Weight        float64
	Industry      string
}

// CandidateWeight is a candidate row once the rebalance date
// has been fixed
type CandidateWeight struct {
	SecurityID string
	Weight     float64
	Industry   string
}

const (
	FilterDrop = 0
	FilterKeep = 1
)

// FilterFlags maps security id to FilterKeep/FilterDrop. An id
// missing from the map had no price evidence and is unresolved,
// which is not the same thing as being dropped.
type FilterFlags map[string]int

func (f FilterFlags) Kept(securityID string) bool {
	flag, ok := f[securityID]
	return ok && flag == FilterKeep
}

// FinalWeight is a candidate after filtering and renormalisation.
// Dropped rows stay in the table with Weight 0 so the audit trail
// shows what was removed.
type FinalWeight struct {
	SecurityID     string
	OriginalWeight float64
	Weight         float64
	Industry       string
	Filter         int
}

type Holding struct {
	RebalanceDate time.Time
	SecurityID    string
	Weight        float64
	Industry      string
	Filter        int
	Quantity      int64
}

package domain

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Span struct {
	Name    string    `json:"name"`
	startTs time.Time

	Elapsed *int64 `json:"elapsed"`
}

type profileKey struct{}

// ContextProfileKey is the context key a *Profile is stored under
var ContextProfileKey = profileKey{}

// GetProfile returns the profile stored in ctx. Callers that run
// without one get a throwaway profile so timing code never has to
// nil-check.
func GetProfile(ctx context.Context) *Profile {
	if profile, ok := ctx.Value(ContextProfileKey).(*Profile); ok && profile != nil {
		return profile
	}
	profile, _ := NewProfile()
	return profile
}

func NewCtxWithProfile(ctx context.Context, profile *Profile) context.Context {
	return context.WithValue(ctx, ContextProfileKey, profile)
}

// Profile is a list of spans. Rebalance dates are built in
// parallel, so spans are appended under a lock.
type Profile struct {
	mu      sync.Mutex
	Spans   []*Span
	startTs time.Time
	TotalMs *int64
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}

	return newProfile, newProfile.End
}

func (p *Profile) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := time.Since(p.startTs).Milliseconds()
	if p.TotalMs == nil {
		p.TotalMs = &t
	}
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

// StartSpan opens a span that the caller closes with the
// returned func. Safe for concurrent use.
func (p *Profile) StartSpan(name string) (newSpan *Span, endSpan func()) {
	newSpan = &Span{
		Name:    name,
		startTs: time.Now(),
	}
	p.mu.Lock()
	p.Spans = append(p.Spans, newSpan)
	p.mu.Unlock()
	return newSpan, newSpan.End
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bytes, err := json.Marshal(p.Spans)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

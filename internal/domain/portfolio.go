package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the realized holdings snapshot for one rebalance date
type Portfolio struct {
	Date      time.Time
	Positions map[string]*Position
	// order the securities came in on the candidate table
	order []string
}

func NewPortfolio(date time.Time) *Portfolio {
	return &Portfolio{
		Date:      date,
		Positions: map[string]*Position{},
		order:     []string{},
	}
}

func (p *Portfolio) Add(position Position) {
	if _, ok := p.Positions[position.SecurityID]; !ok {
		p.order = append(p.order, position.SecurityID)
	}
	p.Positions[position.SecurityID] = &position
}

// HeldSecurities lists securities with a non-zero quantity
func (p Portfolio) HeldSecurities() []string {
	out := []string{}
	for _, id := range p.order {
		if p.Positions[id].Quantity > 0 {
			out = append(out, id)
		}
	}
	return out
}

// MarketValue prices every held position with the given row
func (p Portfolio) MarketValue(price PriceRow) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, id := range p.HeldSecurities() {
		px, ok := price.Get(id)
		if !ok {
			return decimal.Zero, fmt.Errorf("cannot compute market value: price row missing %s", id)
		}
		total = total.Add(decimal.NewFromInt(p.Positions[id].Quantity).Mul(decimal.NewFromFloat(px)))
	}

	return total, nil
}

// Holdings flattens the snapshot in candidate order
func (p Portfolio) Holdings() []Holding {
	out := []Holding{}
	for _, id := range p.order {
		position := p.Positions[id]
		out = append(out, Holding{
			RebalanceDate: p.Date,
			SecurityID:    position.SecurityID,
			Weight:        position.Weight,
			Industry:      position.Industry,
			Filter:        position.Filter,
			Quantity:      position.Quantity,
		})
	}
	return out
}

type Position struct {
	SecurityID string
	Industry   string
	Weight     float64
	Filter     int
	Quantity   int64
}

// SortHoldings orders a flattened holdings table by date, keeping
// the per-date order stable
func SortHoldings(holdings []Holding) {
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].RebalanceDate.Before(holdings[j].RebalanceDate)
	})
}

package l3_service

import (
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"

	"github.com/shopspring/decimal"
)

type QuantityConverter interface {
	ToQuantity(notional decimal.Decimal, weights []domain.FinalWeight, price domain.PriceRow) map[string]int64
}

type quantityConverterHandler struct{}

func NewQuantityConverter() QuantityConverter {
	return quantityConverterHandler{}
}

// UsablePrice is a finite, positive price
func UsablePrice(px float64) bool {
	return util.IsFinite(px) && px > 0
}

// ToQuantity turns weights into whole share counts,
// floor(notional * weight / price), truncated and never rounded.
// Ids with no usable price are left out. Dropped rows hold 0.
func (h quantityConverterHandler) ToQuantity(notional decimal.Decimal, weights []domain.FinalWeight, price domain.PriceRow) map[string]int64 {
	out := map[string]int64{}
	for _, w := range weights {
		px, ok := price.Get(w.SecurityID)
		if !ok || !UsablePrice(px) {
			continue
		}
		if w.Filter != domain.FilterKeep {
			out[w.SecurityID] = 0
			continue
		}

		if !util.IsFinite(w.Weight) {
			continue
		}
		dollars := notional.Mul(decimal.NewFromFloat(w.Weight))
		// precision 0 gives the integer quotient, exactly
		quantity, _ := dollars.QuoRem(decimal.NewFromFloat(px), 0)
		if !quantity.BigInt().IsInt64() {
			continue
		}
		out[w.SecurityID] = quantity.IntPart()
	}

	return out
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"holdingsbuilder/internal/db/models/postgres/public/model"
	. "holdingsbuilder/internal/db/models/postgres/public/table"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"time"

	. "github.com/go-jet/jet/v2/postgres"
)

type AdjustedPriceRepository interface {
	PriceRepository
	Add(tx *sql.Tx, prices []domain.AssetPrice) error
	List(ctx context.Context, start, end time.Time) ([]domain.AssetPrice, error)
}

type adjustedPriceRepositoryHandler struct {
	Db *sql.DB
}

func NewAdjustedPriceRepository(db *sql.DB) AdjustedPriceRepository {
	return adjustedPriceRepositoryHandler{
		Db: db,
	}
}

// Add upserts prices on (symbol, date)
func (h adjustedPriceRepositoryHandler) Add(tx *sql.Tx, prices []domain.AssetPrice) error {
	if len(prices) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]model.AdjustedPrice, 0, len(prices))
	for _, p := range prices {
		models = append(models, model.AdjustedPrice{
			Date:      p.Date,
			Symbol:    p.Symbol,
			Price:     p.Price,
			CreatedAt: now,
		})
	}

	query := AdjustedPrice.
		INSERT(AdjustedPrice.MutableColumns).
		MODELS(models).
		ON_CONFLICT(
			AdjustedPrice.Symbol, AdjustedPrice.Date,
		).DO_UPDATE(
		SET(
			AdjustedPrice.Price.SET(AdjustedPrice.EXCLUDED.Price),
		),
	)

	_, err := query.Exec(tx)
	if err != nil {
		return fmt.Errorf("failed to add adjusted prices to db: %w", err)
	}

	return nil
}

func (h adjustedPriceRepositoryHandler) List(ctx context.Context, start, end time.Time) ([]domain.AssetPrice, error) {
	query := AdjustedPrice.
		SELECT(AdjustedPrice.AllColumns).
		WHERE(
			AdjustedPrice.Date.BETWEEN(DateT(start), DateT(end)),
		).
		ORDER_BY(AdjustedPrice.Date.ASC(), AdjustedPrice.Symbol.ASC())

	result := []model.AdjustedPrice{}
	err := query.QueryContext(ctx, h.Db, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices between %s and %s: %w", start.Format(time.DateOnly), end.Format(time.DateOnly), err)
	}

	return toAssetPrices(result), nil
}

func (h adjustedPriceRepositoryHandler) GetPriceTable(ctx context.Context) (*domain.PriceTable, error) {
	query := AdjustedPrice.
		SELECT(AdjustedPrice.AllColumns).
		ORDER_BY(AdjustedPrice.Date.ASC(), AdjustedPrice.Symbol.ASC())

	result := []model.AdjustedPrice{}
	err := query.QueryContext(ctx, h.Db, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	table := domain.PriceTableFromAssetPrices(toAssetPrices(result))
	return &table, nil
}

func toAssetPrices(rows []model.AdjustedPrice) []domain.AssetPrice {
	out := make([]domain.AssetPrice, 0, len(rows))
	for _, p := range rows {
		out = append(out, domain.AssetPrice{
			Symbol: p.Symbol,
			Date:   util.Truncate(p.Date),
			Price:  p.Price,
		})
	}
	return out
}

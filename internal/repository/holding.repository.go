package repository

import (
	"context"
	"database/sql"
	"fmt"
	"holdingsbuilder/internal/db/models/postgres/public/model"
	"holdingsbuilder/internal/db/models/postgres/public/table"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"os"
	"path/filepath"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

type HoldingsRepository interface {
	Add(ctx context.Context, runID uuid.UUID, holdings []domain.Holding) error
}

// HoldingCsvRow is the holdings output format
type HoldingCsvRow struct {
	RebalanceDate string  `csv:"tiaoCangDate"`
	SecurityID    string  `csv:"secID"`
	Weight        float64 `csv:"weight"`
	Industry      string  `csv:"INDUSTRY"`
	Filters       int     `csv:"filters"`
	Quantity      int64   `csv:"quantity"`
}

type csvHoldingsRepositoryHandler struct {
	Path string
}

func NewCsvHoldingsRepository(path string) HoldingsRepository {
	return csvHoldingsRepositoryHandler{
		Path: path,
	}
}

// Add overwrites the file with holdings. The run id is not part of
// the file format.
func (h csvHoldingsRepositoryHandler) Add(ctx context.Context, runID uuid.UUID, holdings []domain.Holding) error {
	if dir := filepath.Dir(h.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := os.Create(h.Path)
	if err != nil {
		return fmt.Errorf("failed to create holdings file: %w", err)
	}
	defer f.Close()

	rows := make([]HoldingCsvRow, 0, len(holdings))
	for _, holding := range holdings {
		rows = append(rows, HoldingCsvRow{
			RebalanceDate: holding.RebalanceDate.Format(time.DateOnly),
			SecurityID:    holding.SecurityID,
			Weight:        holding.Weight,
			Industry:      holding.Industry,
			Filters:       holding.Filter,
			Quantity:      holding.Quantity,
		})
	}

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("failed to write holdings to %s: %w", h.Path, err)
	}

	return nil
}

type HoldingsRepositoryHandler struct {
	Db *sql.DB
}

func NewHoldingsRepository(db *sql.DB) HoldingsRepository {
	return HoldingsRepositoryHandler{
		Db: db,
	}
}

// Add inserts every holding of a run in one transaction
func (h HoldingsRepositoryHandler) Add(ctx context.Context, runID uuid.UUID, holdings []domain.Holding) error {
	if len(holdings) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]model.Holding, 0, len(holdings))
	for _, holding := range holdings {
		models = append(models, model.Holding{
			RunID:         runID,
			RebalanceDate: holding.RebalanceDate,
			SecurityID:    holding.SecurityID,
			Weight:        holding.Weight,
			Industry:      holding.Industry,
			Filters:       int32(holding.Filter),
			Quantity:      holding.Quantity,
			CreatedAt:     now,
		})
	}

	tx, err := h.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := table.Holding.
		INSERT(table.Holding.MutableColumns).
		MODELS(models)
	if _, err := query.ExecContext(ctx, tx); err != nil {
		return fmt.Errorf("failed to add holdings for run %s: %w", runID.String(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings: %w", err)
	}

	return nil
}

// ListByRun reads back a run's holdings ordered by date
func (h HoldingsRepositoryHandler) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.Holding, error) {
	query := table.Holding.
		SELECT(table.Holding.AllColumns).
		WHERE(table.Holding.RunID.EQ(postgres.UUID(runID))).
		ORDER_BY(table.Holding.RebalanceDate.ASC())

	result := []model.Holding{}
	if err := query.QueryContext(ctx, h.Db, &result); err != nil {
		return nil, fmt.Errorf("failed to list holdings for run %s: %w", runID.String(), err)
	}

	out := make([]domain.Holding, 0, len(result))
	for _, m := range result {
		out = append(out, domain.Holding{
			RebalanceDate: util.Truncate(m.RebalanceDate),
			SecurityID:    m.SecurityID,
			Weight:        m.Weight,
			Industry:      m.Industry,
			Filter:        int(m.Filters),
			Quantity:      m.Quantity,
		})
	}

	return out, nil
}

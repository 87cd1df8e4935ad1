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
	"strings"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/gocarina/gocsv"
)

type CandidateRepository interface {
	List(ctx context.Context) ([]domain.Candidate, error)
}

// candidateCsvRow is one line of the candidate export
type candidateCsvRow struct {
	RebalanceDate string  `csv:"tiaoCangDate"`
	SecurityID    string  `csv:"secID"`
	Weight        float64 `csv:"weight"`
	Industry      string  `csv:"INDUSTRY"`
}

type csvCandidateRepositoryHandler struct {
	Path string
}

func NewCsvCandidateRepository(path string) CandidateRepository {
	return csvCandidateRepositoryHandler{
		Path: path,
	}
}

func (h csvCandidateRepositoryHandler) List(ctx context.Context) ([]domain.Candidate, error) {
	f, err := os.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate file: %w", err)
	}
	defer f.Close()

	rows := []candidateCsvRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse candidate file %s: %w", h.Path, err)
	}

	out := make([]domain.Candidate, 0, len(rows))
	for i, row := range rows {
		date, err := util.ParseDate(strings.TrimSpace(row.RebalanceDate))
		if err != nil {
			return nil, fmt.Errorf("candidate file line %d: %w", i+2, err)
		}
		out = append(out, domain.Candidate{
			RebalanceDate: date,
			SecurityID:    strings.TrimSpace(row.SecurityID),
			Weight:        row.Weight,
			Industry:      row.Industry,
		})
	}

	return out, nil
}

type CandidateRepositoryHandler struct {
	Db *sql.DB
}

func NewCandidateRepository(db *sql.DB) *CandidateRepositoryHandler {
	return &CandidateRepositoryHandler{
		Db: db,
	}
}

// List returns candidates by date, then in insertion order
func (h CandidateRepositoryHandler) List(ctx context.Context) ([]domain.Candidate, error) {
	query := table.Candidate.
		SELECT(table.Candidate.AllColumns).
		ORDER_BY(table.Candidate.RebalanceDate.ASC(), table.Candidate.CreatedAt.ASC(), table.Candidate.SecurityID.ASC())

	result := []model.Candidate{}
	err := query.QueryContext(ctx, h.Db, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	out := make([]domain.Candidate, 0, len(result))
	for _, c := range result {
		out = append(out, domain.Candidate{
			RebalanceDate: util.Truncate(c.RebalanceDate),
			SecurityID:    c.SecurityID,
			Weight:        c.Weight,
			Industry:      c.Industry,
		})
	}

	return out, nil
}

// Add upserts candidates on (rebalance_date, security_id)
func (h CandidateRepositoryHandler) Add(tx *sql.Tx, candidates []domain.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]model.Candidate, 0, len(candidates))
	for i, c := range candidates {
		models = append(models, model.Candidate{
			RebalanceDate: c.RebalanceDate,
			SecurityID:    c.SecurityID,
			Weight:        c.Weight,
			Industry:      c.Industry,
			// keeps file order when listing
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}

	query := table.Candidate.
		INSERT(table.Candidate.MutableColumns).
		MODELS(models).
		ON_CONFLICT(
			table.Candidate.RebalanceDate, table.Candidate.SecurityID,
		).DO_UPDATE(
		postgres.SET(
			table.Candidate.Weight.SET(table.Candidate.EXCLUDED.Weight),
			table.Candidate.Industry.SET(table.Candidate.EXCLUDED.Industry),
		),
	)

	_, err := query.Exec(tx)
	if err != nil {
		return fmt.Errorf("failed to add candidates to db: %w", err)
	}

	return nil
}

package cmd

import (
	"database/sql"
	"fmt"
	"holdingsbuilder/api"
	"holdingsbuilder/internal/app"
	"holdingsbuilder/internal/config"
	"holdingsbuilder/internal/metrics"
	"holdingsbuilder/internal/repository"
	"log"

	_ "github.com/lib/pq"
)

// Repositories are the data sources and sink picked by data.source
type Repositories struct {
	// nil for csv
	Db                  *sql.DB
	PriceRepository     repository.PriceRepository
	CandidateRepository repository.CandidateRepository
	// nil when csv output is not configured
	HoldingsRepository repository.HoldingsRepository
}

func (r Repositories) Close() error {
	if r.Db == nil {
		return nil
	}
	return r.Db.Close()
}

func NewRepositories(c config.Config) (*Repositories, error) {
	switch c.Data.Source {
	case config.SourceCsv:
		out := &Repositories{
			PriceRepository:     repository.NewCsvPriceRepository(c.Data.PricesPath),
			CandidateRepository: repository.NewCsvCandidateRepository(c.Data.CandidatesPath),
		}
		if c.Data.OutputPath != "" {
			out.HoldingsRepository = repository.NewCsvHoldingsRepository(c.Data.OutputPath)
		}
		return out, nil
	case config.SourcePostgres:
		dbConn, err := sql.Open("postgres", c.Db.ToConnectionStr())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		out := &Repositories{
			Db:                  dbConn,
			PriceRepository:     repository.NewAdjustedPriceRepository(dbConn),
			CandidateRepository: repository.NewCandidateRepository(dbConn),
			HoldingsRepository:  repository.NewHoldingsRepository(dbConn),
		}
		// csv output wins over the holding table when both are set
		if c.Data.OutputPath != "" {
			out.HoldingsRepository = repository.NewCsvHoldingsRepository(c.Data.OutputPath)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", c.Data.Source)
	}
}

func NewHoldingsApp(c config.Config, repositories Repositories) app.HoldingsApp {
	return app.NewHoldingsApp(
		repositories.PriceRepository,
		repositories.CandidateRepository,
		repositories.HoldingsRepository,
		app.SettingsFromConfig(c),
		metrics.Default(),
	)
}

func CloseDependencies(handler *api.ApiHandler) {
	if handler.Db == nil {
		return
	}
	err := handler.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

// InitializeDependencies reads the config from config.Path()
func InitializeDependencies() (*api.ApiHandler, int, error) {
	c, err := config.Load(config.Path())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load config: %w", err)
	}
	handler, err := InitializeDependenciesFromConfig(*c)
	if err != nil {
		return nil, 0, err
	}
	return handler, c.Api.Port, nil
}

func InitializeDependenciesFromConfig(c config.Config) (*api.ApiHandler, error) {
	repositories, err := NewRepositories(c)
	if err != nil {
		return nil, err
	}

	apiHandler := &api.ApiHandler{
		Db:          repositories.Db,
		HoldingsApp: NewHoldingsApp(c, *repositories),
		JwtSecret:   c.Api.JwtSecret,
	}

	return apiHandler, nil
}

package main

import (
	"context"
	"fmt"
	"holdingsbuilder/cmd"
	"holdingsbuilder/internal/config"
	"holdingsbuilder/internal/logger"
	"holdingsbuilder/internal/repository"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load the price and candidate csv files into postgres",
	Long: `Load data.prices_path and data.candidates_path into the adjusted_price and
candidate tables of the configured database. Existing rows are updated.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(c *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger.FromContext(ctx)

	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if conf.Data.PricesPath == "" || conf.Data.CandidatesPath == "" {
		return fmt.Errorf("data.prices_path and data.candidates_path are required to ingest")
	}

	priceTable, err := repository.NewCsvPriceRepository(conf.Data.PricesPath).GetPriceTable(ctx)
	if err != nil {
		return err
	}
	candidates, err := repository.NewCsvCandidateRepository(conf.Data.CandidatesPath).List(ctx)
	if err != nil {
		return err
	}

	conf.Data.Source = config.SourcePostgres
	if err := conf.Validate(); err != nil {
		return err
	}
	repositories, err := cmd.NewRepositories(*conf)
	if err != nil {
		return err
	}
	defer repositories.Close()

	tx, err := repositories.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	prices := priceTable.AssetPrices()
	err = repository.NewAdjustedPriceRepository(repositories.Db).Add(tx, prices)
	if err != nil {
		return err
	}
	err = repository.NewCandidateRepository(repositories.Db).Add(tx, candidates)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	log.Infow("ingested inputs", "prices", len(prices), "candidates", len(candidates))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"holdingsbuilder/cmd"
	"holdingsbuilder/internal/app"
	"holdingsbuilder/internal/config"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/logger"
	l3_service "holdingsbuilder/internal/service/l3"
	"holdingsbuilder/internal/util"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build holdings for every rebalance date up to the end date",
	Long: `Build holdings for every rebalance date in the candidate table up to the
end date, and write them to data.output_path (or the holding table when the
source is postgres).

Examples:
  holdings build
  holdings build --end-date 2012-11-30 --notional 10000000
  holdings build --price-lookup previous_trading_day --format json`,
	RunE: runBuild,
}

var (
	buildEndDate     string
	buildNotional    float64
	buildPriceLookup string
	buildFilter      string
	buildOutput      string
	buildFormat      string
	buildDryRun      bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildEndDate, "end-date", "", "Override end_date")
	buildCmd.Flags().Float64Var(&buildNotional, "notional", 0, "Override notional")
	buildCmd.Flags().StringVar(&buildPriceLookup, "price-lookup", "", "Override price_lookup (exact|previous_trading_day)")
	buildCmd.Flags().StringVar(&buildFilter, "filter", "", "Override filter.expression")
	buildCmd.Flags().StringVar(&buildOutput, "output", "", "Write holdings csv here instead of data.output_path")
	buildCmd.Flags().StringVar(&buildFormat, "format", "table", "Output format: table, json")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Do not write holdings")
}

func buildInputFromFlags(c *cobra.Command) (app.BuildInput, error) {
	in := app.BuildInput{
		Persist: !buildDryRun,
	}
	if buildEndDate != "" {
		endDate, err := util.ParseDate(buildEndDate)
		if err != nil {
			return in, err
		}
		in.EndDate = &endDate
	}
	if c.Flags().Changed("notional") {
		in.Notional = util.DecimalPointer(decimal.NewFromFloat(buildNotional))
	}
	if buildPriceLookup != "" {
		in.PriceLookup = &buildPriceLookup
	}
	if c.Flags().Changed("filter") {
		in.FilterExpression = &buildFilter
	}
	return in, nil
}

func runBuild(c *cobra.Command, args []string) error {
	if buildFormat != "table" && buildFormat != "json" {
		return fmt.Errorf("unknown format %q", buildFormat)
	}
	in, err := buildInputFromFlags(c)
	if err != nil {
		return err
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if buildOutput != "" {
		conf.Data.OutputPath = buildOutput
	}
	repositories, err := cmd.NewRepositories(*conf)
	if err != nil {
		return err
	}
	defer repositories.Close()

	profile, endProfile := domain.NewProfile()
	ctx := domain.NewCtxWithProfile(context.Background(), profile)
	ctx = logger.NewContext(ctx, logger.New())

	result, err := cmd.NewHoldingsApp(*conf, *repositories).Build(ctx, in)
	if err != nil {
		return err
	}
	endProfile()

	if buildFormat == "json" {
		return printBuildJson(os.Stdout, *result)
	}
	return printBuildTable(os.Stdout, *result)
}

func printBuildJson(w io.Writer, result l3_service.BuildResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(result.Holdings())
}

func printBuildTable(w io.Writer, result l3_service.BuildResult) error {
	fmt.Fprintf(w, "run %s, notional %s\n\n", result.RunID, result.Notional.StringFixed(2))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tPRICE DATE\tHELD\tINVESTED\tMARKET VALUE\tOMITTED")
	for _, d := range result.Dates {
		held := 0
		if d.Portfolio != nil {
			held = len(d.Portfolio.HeldSecurities())
		}
		fmt.Fprintf(
			tw,
			"%s\t%s\t%d\t%.4f\t%s\t%d\n",
			d.Date.Format(time.DateOnly),
			d.PriceDate.Format(time.DateOnly),
			held,
			d.InvestedWeight,
			d.MarketValue.StringFixed(2),
			len(d.Omissions),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "\n%d dates failed:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s\n", f.Error())
		}
	}
	return nil
}

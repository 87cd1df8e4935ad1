package main

import (
	"context"
	"fmt"
	"holdingsbuilder/cmd"
	"holdingsbuilder/internal/config"
	"holdingsbuilder/internal/util"
	"time"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List the rebalance dates found in the candidate table",
	RunE:  runSchedule,
}

var scheduleEndDate string

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleEndDate, "end-date", "", "Override end_date")
}

func runSchedule(c *cobra.Command, args []string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	var endDate *time.Time
	if scheduleEndDate != "" {
		d, err := util.ParseDate(scheduleEndDate)
		if err != nil {
			return err
		}
		endDate = &d
	}

	repositories, err := cmd.NewRepositories(*conf)
	if err != nil {
		return err
	}
	defer repositories.Close()

	schedule, err := cmd.NewHoldingsApp(*conf, *repositories).Schedule(context.Background(), endDate)
	if err != nil {
		return err
	}
	for _, d := range schedule.Dates {
		fmt.Fprintln(c.OutOrStdout(), d.Format(time.DateOnly))
	}
	return nil
}

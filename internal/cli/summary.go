package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwizi/esg-advisor/internal/app"
	"github.com/dwizi/esg-advisor/internal/config"
)

func newSummaryCommand(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "summary",
		Short: "Manage daily conversation summaries",
	}
	root.AddCommand(newSummaryAddCommand(logger))
	root.AddCommand(newSummaryListCommand())
	return root
}

func newSummaryAddCommand(logger *slog.Logger) *cobra.Command {
	var date string
	var content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store or replace the summary for one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			day := time.Now().In(cfg.Location())
			if strings.TrimSpace(date) != "" {
				parsed, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(date), cfg.Location())
				if err != nil {
					return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
				}
				day = parsed
			}

			ctx := context.Background()
			sqlStore, err := app.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer sqlStore.Close()

			summary, err := sqlStore.UpsertDailySummary(ctx, day, content)
			if err != nil {
				return err
			}
			logger.Info("daily summary stored", "date", summary.Date.Format(time.DateOnly), "id", summary.ID)
			fmt.Fprintln(cmd.OutOrStdout(), summary.Date.Format(time.DateOnly))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "calendar day (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&content, "content", "", "summary text")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newSummaryListCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent daily summaries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("days must not be negative")
			}
			cfg := config.FromEnv()
			ctx := context.Background()
			sqlStore, err := app.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer sqlStore.Close()

			today := time.Now().In(cfg.Location())
			summaries, err := sqlStore.ListDailySummaries(ctx, today.AddDate(0, 0, -days), today)
			if err != nil {
				return err
			}
			styles := newTheme()
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styles.subtle.Render("no summaries"))
				return nil
			}
			for _, summary := range summaries {
				fmt.Fprintln(cmd.OutOrStdout(), styles.accent.Render(summary.Date.Format(time.DateOnly)))
				fmt.Fprintln(cmd.OutOrStdout(), styles.value.Render(summary.Content))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 3, "number of days before today to include")
	return cmd
}

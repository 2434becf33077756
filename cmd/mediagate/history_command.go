package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediagate/internal/ipc"
	"mediagate/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent jobs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				records, err := client.History(userID, limit)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(stdout, "No jobs recorded")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, historyRow(record))
				}
				columns := []tableColumn{
					{title: "ID", numeric: true},
					{title: "User", numeric: true},
					{title: "Flow"},
					{title: "Action"},
					{title: "Subject"},
					{title: "Outcome"},
					{title: "Duration", numeric: true},
					{title: "When"},
				}
				fmt.Fprintln(stdout, renderTable(columns, rows))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "Filter by user ID (0 shows all users)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of rows")
	return cmd
}

func historyRow(record ipc.HistoryRecord) []string {
	subject := textutil.Truncate(record.Subject, 40)
	return []string{
		fmt.Sprintf("%d", record.ID),
		fmt.Sprintf("%d", record.UserID),
		record.Flow,
		record.Action,
		subject,
		record.Outcome,
		formatMillis(record.DurationMS),
		formatTimestamp(record.CreatedAt),
	}
}

func formatMillis(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

func formatTimestamp(value string) string {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

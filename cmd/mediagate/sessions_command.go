package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediagate/internal/ipc"
	"mediagate/internal/textutil"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List active user sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				sessions, err := client.Sessions()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(stdout, "No active sessions")
					return nil
				}

				rows := make([][]string, 0, len(sessions))
				for _, info := range sessions {
					rows = append(rows, []string{
						fmt.Sprintf("%d", info.UserID),
						info.Kind,
						info.Stage,
						textutil.Truncate(info.Subject, 50),
						formatTimestamp(info.CreatedAt),
					})
				}
				columns := []tableColumn{
					{title: "User", numeric: true},
					{title: "Kind"},
					{title: "Stage"},
					{title: "Subject"},
					{title: "Since"},
				}
				fmt.Fprintln(stdout, renderTable(columns, rows))
				return nil
			})
		},
	}
}

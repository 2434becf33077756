package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediagate/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and storage status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
				connectorKind := statusWarn
				if status.ConnectorAttached {
					connectorKind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine("Connector", connectorKind, yesNo(status.ConnectorAttached), colorize))
				fmt.Fprintln(stdout, renderStatusLine("Transport socket", statusInfo, status.TransportSocket, colorize))
				fmt.Fprintln(stdout, renderStatusLine("History DB", statusInfo, status.HistoryDBPath, colorize))
				fmt.Fprintln(stdout, renderStatusLine("Active sessions", statusInfo, fmt.Sprintf("%d", status.ActiveSessions), colorize))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Checks", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, check := range status.Checks {
					kind := statusWarn
					if check.Passed {
						kind = statusOK
					}
					fmt.Fprintln(stdout, renderStatusLine(check.Name, kind, check.Detail, colorize))
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Jobs", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := [][]string{
					{"total", fmt.Sprintf("%d", status.JobsTotal)},
					{"done", fmt.Sprintf("%d", status.JobsDone)},
					{"failed", fmt.Sprintf("%d", status.JobsFailed)},
				}
				fmt.Fprintln(stdout, renderTable([]tableColumn{{title: "Outcome"}, {title: "Count", numeric: true}}, rows))
				return nil
			})
		},
	}
}

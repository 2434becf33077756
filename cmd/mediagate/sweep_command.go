package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediagate/internal/ipc"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reclaim stale temp artifacts now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				result, err := client.Sweep()
				if err != nil {
					return err
				}
				if result.Error != "" {
					return errors.New("sweep: " + result.Error)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d stale temp artifact(s)\n", result.Removed)
				return nil
			})
		},
	}
}

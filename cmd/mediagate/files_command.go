package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"mediagate/internal/artifacts"
	"mediagate/internal/textutil"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "files <user-id>",
		Short: "List a user's saved files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || userID <= 0 {
				return fmt.Errorf("invalid user ID %q", args[0])
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := artifacts.NewStore(cfg.Paths.TempDir, cfg.Paths.StorageDir)
			if err != nil {
				return err
			}
			entries, err := store.ListPermanent(userID)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(stdout, "No saved files for user %d\n", userID)
				return nil
			}

			userDir := filepath.Join(cfg.Paths.StorageDir, strconv.FormatInt(userID, 10))
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Name,
					detectKind(filepath.Join(userDir, entry.Name)),
					textutil.FormatSize(entry.Size),
					entry.Modified.Format("2006-01-02 15:04:05"),
				})
			}
			columns := []tableColumn{
				{title: "Name"},
				{title: "Type"},
				{title: "Size", numeric: true},
				{title: "Modified"},
			}
			fmt.Fprintln(stdout, renderTable(columns, rows))
			return nil
		},
	}
}

func detectKind(path string) string {
	kind, err := mimetype.DetectFile(path)
	if err != nil {
		return "unknown"
	}
	return kind.String()
}

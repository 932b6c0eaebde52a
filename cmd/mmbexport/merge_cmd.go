package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mm0-org/mmb/export"
	"github.com/mm0-org/mmb/merge"
)

func newMergeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "merge <primary.json> <secondary.json>",
		Short: "Merge two fixtures and export the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			primary, err := loadEnvironment(args[0])
			if err != nil {
				return err
			}
			secondary, err := loadEnvironment(args[1])
			if err != nil {
				return err
			}

			res, err := merge.Merge(primary, secondary)
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			for _, d := range res.Diagnostics.Items() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", d.Error())
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			expRes, err := export.Export(primary, f)
			if err != nil {
				return err
			}
			slog.Info("merged and exported container", "path", out, "bytes", expRes.Size, "diagnostics", res.Diagnostics.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "out.mmb", "Output container path")
	return cmd
}

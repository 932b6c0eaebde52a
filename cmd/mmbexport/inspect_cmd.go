package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mm0-org/mmb/contenthash"
)

func newInspectCmd() *cobra.Command {
	var showHash bool
	cmd := &cobra.Command{
		Use:   "inspect <fixture.json>",
		Short: "Summarize a fixture's declarations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnvironment(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sorts: %d\n", e.Sorts.Len())
			for _, s := range e.Sorts.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", s.Name, s.Mods)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "terms: %d\n", e.Terms.Len())
			for _, rec := range e.Terms.All() {
				if showHash {
					h, err := contenthash.HashTerm(rec)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s  %x\n", rec.Name, h)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d args)\n", rec.Name, len(rec.Args))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "theorems: %d\n", e.Thms.Len())
			for _, rec := range e.Thms.All() {
				if showHash {
					h, err := contenthash.HashTheorem(rec)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s  %x\n", rec.Name, h)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", rec.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHash, "hash", false, "Print each declaration's content hash instead of its signature")
	return cmd
}

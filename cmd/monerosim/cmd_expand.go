package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monerosim/monerosim/internal/pipeline"
)

func newExpandCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Resolve a scenario's groups, ranges, and auto timing fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			output, _ := cmd.Flags().GetString("output")
			dumpGraph, _ := cmd.Flags().GetBool("dump-graph")
			seed, _ := cmd.Flags().GetInt64("seed")
			seedSet := cmd.Flags().Changed("seed")

			if dumpGraph {
				graph, err := json.MarshalIndent(pipeline.DumpGraph(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(graph))
				return nil
			}

			if from == "" || output == "" {
				return fmt.Errorf("--from and --output are required")
			}

			data, err := os.ReadFile(from)
			if err != nil {
				return err
			}

			var seedOverride *int64
			if seedSet {
				seedOverride = &seed
			}

			exp, warnings, err := pipeline.RunExpand(log, data, seedOverride)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				log.Warn(w.String())
			}

			out, err := pipeline.MarshalExpanded(exp)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expanded %d agents to %s\n", len(exp.Agents), output)
			return nil
		},
	}
	cmd.Flags().String("from", "", "input scenario YAML path")
	cmd.Flags().StringP("output", "o", "", "output path for the expanded scenario")
	cmd.Flags().Bool("dump-graph", false, "print the C3 timing dependency graph and exit")
	cmd.Flags().Int64("seed", 0, "override general.seed")
	return cmd
}

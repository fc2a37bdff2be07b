package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monerosim/monerosim/internal/buildplan"
	"github.com/monerosim/monerosim/internal/buildspec"
	"github.com/monerosim/monerosim/internal/config"
	"github.com/monerosim/monerosim/internal/pipeline"
)

func newPlanCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compile an expanded scenario into a Shadow simulation plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			output, _ := cmd.Flags().GetString("output")
			priorPath, _ := cmd.Flags().GetString("prior-build-plan")
			buildSpecPath, _ := cmd.Flags().GetString("build-spec")
			sharedDir, _ := cmd.Flags().GetString("shared-dir")

			if cfgPath == "" || output == "" {
				return fmt.Errorf("--config and --output are required")
			}

			data, err := os.ReadFile(cfgPath)
			if err != nil {
				return err
			}
			exp, err := pipeline.UnmarshalExpanded(data)
			if err != nil {
				return err
			}

			var specs map[string]buildplan.Spec
			if buildSpecPath != "" {
				specs, err = buildspec.Load(buildSpecPath)
				if err != nil {
					return err
				}
			} else {
				specs = map[string]buildplan.Spec{}
			}

			cfg := config.Load(log)
			if sharedDir == "" {
				sharedDir = cfg.MonerosimSharedDir
			}

			var prior *buildplan.Manifest
			if priorPath != "" {
				priorData, err := os.ReadFile(priorPath)
				if err != nil {
					return err
				}
				prior = &buildplan.Manifest{}
				if err := json.Unmarshal(priorData, prior); err != nil {
					return fmt.Errorf("parsing --prior-build-plan: %w", err)
				}
			}

			if err := pipeline.RunPlan(log, exp, pipeline.PlanOptions{
				OutputDir:      output,
				SharedDir:      sharedDir,
				BuildSpecs:     specs,
				PriorBuildPlan: prior,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote Shadow plan for %d agents to %s\n", len(exp.Agents), output)
			return nil
		},
	}
	cmd.Flags().String("config", "", "path to the expanded scenario (from `expand -o`)")
	cmd.Flags().StringP("output", "o", "", "Shadow plan output directory")
	cmd.Flags().String("prior-build-plan", "", "previously emitted build_plan.json, reused for unchanged binaries")
	cmd.Flags().String("build-spec", "", "JSON file mapping binary name to repo/commit/patch/flags")
	cmd.Flags().String("shared-dir", "", "override the shared registry directory (default from MONEROSIM_SHARED_DIR)")
	return cmd
}

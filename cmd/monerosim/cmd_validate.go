package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monerosim/monerosim/internal/pipeline"
)

func newValidateCmd(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Run the cross-cutting checks against an already-expanded scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			exp, err := pipeline.UnmarshalExpanded(data)
			if err == nil {
				err = pipeline.RunValidate(exp)
			}

			if asJSON {
				type result struct {
					OK    bool   `json:"ok"`
					Error string `json:"error,omitempty"`
				}
				r := result{OK: err == nil}
				if err != nil {
					r.Error = err.Error()
				}
				out, marshalErr := json.MarshalIndent(r, "", "  ")
				if marshalErr != nil {
					return marshalErr
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				if err != nil {
					return err
				}
				return nil
			}

			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "scenario is valid")
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "emit machine-readable JSON result")
	return cmd
}

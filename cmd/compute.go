package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bluewater-labs/ecoindex/internal/engine"
	"github.com/bluewater-labs/ecoindex/internal/model"
)

var computeCmd = &cobra.Command{
	Use:   "compute [sample.json]",
	Short: "Compute ecosystem indicators for a sample record",
	Long:  "Reads a sample JSON record from the given file (or stdin), runs the indicator engine, and prints the updated record.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
			if err != nil {
				return eris.Wrapf(err, "read %s", args[0])
			}
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return eris.Wrap(err, "read stdin")
			}
		}

		var sample model.Sample
		if err := json.Unmarshal(data, &sample); err != nil {
			return eris.Wrap(model.ErrInvalidInput, "parse sample record")
		}

		if err := sample.Validate(); err != nil {
			return err
		}
		if err := engine.Compute(&sample, cfg.Engine.Defaults()); err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(sample), "encode result")
	},
}

func init() {
	rootCmd.AddCommand(computeCmd)
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bluewater-labs/ecoindex/internal/export"
	"github.com/bluewater-labs/ecoindex/internal/model"
	"github.com/bluewater-labs/ecoindex/internal/process"
	"github.com/bluewater-labs/ecoindex/internal/store"
)

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Manage the batch sample store",
}

var samplesAddCmd = &cobra.Command{
	Use:   "add <sample.json>",
	Short: "Append a raw sample record to the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}
		var sample model.Sample
		if err := json.Unmarshal(data, &sample); err != nil {
			return eris.Wrap(model.ErrInvalidInput, "parse sample record")
		}
		if sample.LocationID == "" {
			return eris.Wrap(model.ErrInvalidInput, "location_id is required")
		}
		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		if err := st.AddSample(cmd.Context(), sample); err != nil {
			return err
		}
		zap.L().Info("sample added", zap.String("location_id", sample.LocationID))
		return nil
	},
}

var samplesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the stored raw samples",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		samples, err := st.ListSamples(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(samples), "encode samples")
	},
}

var samplesProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Reprocess stored samples and print the processed batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		ps, err := process.Run(cmd.Context(), st)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(ps), "encode processed samples")
	},
}

var samplesImportCmd = &cobra.Command{
	Use:   "import <results.xlsx>",
	Short: "Import samples from a lab result spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("cli"); err != nil {
			return err
		}
		samples, err := export.ImportXLSX(args[0])
		if err != nil {
			return err
		}

		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		for _, s := range samples {
			if err := st.AddSample(cmd.Context(), s); err != nil {
				return err
			}
		}
		zap.L().Info("samples imported",
			zap.String("path", args[0]),
			zap.Int("count", len(samples)),
		)
		return nil
	},
}

func init() {
	samplesCmd.AddCommand(samplesAddCmd, samplesListCmd, samplesProcessCmd, samplesImportCmd)
	rootCmd.AddCommand(samplesCmd)
}

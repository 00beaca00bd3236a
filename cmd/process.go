package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/claims-cli/internal/model"
)

var (
	processLicense string
	processClaim   string
	processVehicle string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single claim submission from local files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sub, err := readSubmission(processLicense, processClaim, processVehicle)
		if err != nil {
			return err
		}

		state, err := env.Pipeline.Run(ctx, sub)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("claim processed",
			zap.String("decision", string(state.Decision)),
			zap.Int("steps", len(state.Steps)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	},
}

func readSubmission(licensePath, claimPath, vehiclePath string) (model.Submission, error) {
	var sub model.Submission
	for _, f := range []struct {
		path string
		doc  *model.Document
	}{
		{licensePath, &sub.License},
		{claimPath, &sub.Claim},
		{vehiclePath, &sub.Vehicle},
	} {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return model.Submission{}, eris.Wrapf(err, "read %s", f.path)
		}
		f.doc.Name = filepath.Base(f.path)
		f.doc.Data = data
	}
	return sub, nil
}

func init() {
	processCmd.Flags().StringVar(&processLicense, "license", "", "driver's license document (required)")
	processCmd.Flags().StringVar(&processClaim, "claim", "", "claim form document (required)")
	processCmd.Flags().StringVar(&processVehicle, "vehicle", "", "vehicle photo (required)")
	_ = processCmd.MarkFlagRequired("license")
	_ = processCmd.MarkFlagRequired("claim")
	_ = processCmd.MarkFlagRequired("vehicle")
	rootCmd.AddCommand(processCmd)
}

package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/model"
)

var divisionCmd = &cobra.Command{
	Use:   "division <code>",
	Short: "List every record sharing the code's 2-digit division",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}

		records, err := idx.LookupCodeDivision(args[0])
		if err != nil {
			return err
		}

		return writeOutput(os.Stdout, outputFormat, records)
	},
}

var divisionsCandidatesPath string

var divisionsCmd = &cobra.Command{
	Use:   "divisions",
	Short: "Deduplicate a candidate list by division",
	Long:  "Reads a JSON array of {\"sic_code\": ...} candidates and keeps the first candidate per distinct division, preserving order.",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}

		data, err := os.ReadFile(divisionsCandidatesPath)
		if err != nil {
			return eris.Wrap(err, "read candidates file")
		}

		var candidates []model.SICCandidate
		if err := json.Unmarshal(data, &candidates); err != nil {
			return eris.Wrap(err, "unmarshal candidates")
		}

		groups, issues := idx.UniqueCodeDivisions(candidates)
		for _, issue := range issues {
			zap.L().Warn("skipped candidate",
				zap.Int("index", issue.Index),
				zap.String("sic_code", issue.SICCode),
				zap.String("reason", issue.Reason),
			)
		}

		return writeOutput(os.Stdout, outputFormat, struct {
			Divisions []model.DivisionGroup `json:"divisions"`
			Issues    []model.Issue         `json:"issues,omitempty"`
		}{Divisions: groups, Issues: issues})
	},
}

func init() {
	divisionsCmd.Flags().StringVar(&divisionsCandidatesPath, "candidates", "", "path to JSON candidates file (required)")
	_ = divisionsCmd.MarkFlagRequired("candidates")

	rootCmd.AddCommand(divisionCmd)
	rootCmd.AddCommand(divisionsCmd)
}

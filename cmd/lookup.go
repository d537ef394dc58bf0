package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/model"
)

// lookupResult is the CLI shape of a description lookup: the match (or
// null) plus the division context a downstream prompt builder wants.
type lookupResult struct {
	Description     string         `json:"description"`
	Matched         bool           `json:"matched"`
	Record          *model.Record  `json:"record,omitempty"`
	Division        string         `json:"division,omitempty"`
	DivisionRecords []model.Record `json:"division_records,omitempty"`
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <description>",
	Short: "Resolve a free-text description to its SIC code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex(cmd.Context())
		if err != nil {
			return err
		}

		result := lookupResult{Description: args[0]}
		if rec, ok := idx.Lookup(args[0]); ok {
			result.Matched = true
			result.Record = &rec
			result.Division = rec.Division()
			if divRecords, err := idx.LookupCodeDivision(rec.Code); err == nil {
				result.DivisionRecords = divRecords
			}
		} else {
			zap.L().Info("no exact match for description", zap.String("description", args[0]))
		}

		return writeOutput(os.Stdout, outputFormat, result)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

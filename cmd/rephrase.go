package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statsight/sic-cli/internal/model"
)

var rephraseCmd = &cobra.Command{
	Use:   "rephrase <code>",
	Short: "Look up the reviewed description for a SIC code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := loadRephraseResolver(cmd.Context())
		if err != nil {
			return err
		}

		result := struct {
			SICCode             string `json:"sic_code"`
			Matched             bool   `json:"matched"`
			ReviewedDescription string `json:"reviewed_description,omitempty"`
		}{SICCode: args[0]}

		if desc, ok := resolver.Lookup(args[0]); ok {
			result.Matched = true
			result.ReviewedDescription = desc
		}

		return writeOutput(os.Stdout, outputFormat, result)
	},
}

var rephrasePayloadPath string

var rephraseProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Enrich a classifier payload with reviewed descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, err := loadRephraseResolver(cmd.Context())
		if err != nil {
			return err
		}

		data, err := os.ReadFile(rephrasePayloadPath)
		if err != nil {
			return eris.Wrap(err, "read payload file")
		}

		var payload model.ClassificationPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return eris.Wrap(err, "unmarshal payload")
		}

		enriched, issues := resolver.Process(payload)
		for _, issue := range issues {
			zap.L().Warn("unresolved code",
				zap.Int("index", issue.Index),
				zap.String("sic_code", issue.SICCode),
			)
		}

		return writeOutput(os.Stdout, outputFormat, struct {
			Payload model.ClassificationPayload `json:"payload"`
			Issues  []model.Issue               `json:"issues,omitempty"`
		}{Payload: enriched, Issues: issues})
	},
}

func init() {
	rephraseProcessCmd.Flags().StringVar(&rephrasePayloadPath, "payload", "", "path to JSON payload file (required)")
	_ = rephraseProcessCmd.MarkFlagRequired("payload")

	rephraseCmd.AddCommand(rephraseProcessCmd)
	rootCmd.AddCommand(rephraseCmd)
}

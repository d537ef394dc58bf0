package main

import (
	"os"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded resolution runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}

		return writeOutput(os.Stdout, outputFormat, runs)
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

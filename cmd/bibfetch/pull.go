package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [identifiers...]",
	Short: "Resolve identifiers and download the referenced documents",
	Long: `Pull will resolve each identifier and additionally download the document
it refers to (PDF or page snapshot) next to its metadata record.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("pull is not implemented yet")
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

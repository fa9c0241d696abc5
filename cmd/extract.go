package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prodmap/assist/internal/pipeline"
)

var extractProductID string

var extractCmd = &cobra.Command{
	Use:   "extract [message]",
	Short: "Extract entity drafts from a single message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Pipeline.ExtractEntities(cmd.Context(), pipeline.ChatRequest{
			Message:   args[0],
			ProductID: extractProductID,
		})
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractProductID, "product", "", "product ID for context grounding")
	rootCmd.AddCommand(extractCmd)
}

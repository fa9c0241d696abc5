package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prodmap/assist/internal/store"
)

var (
	auditFlow      string
	auditProductID string
	auditLimit     int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recorded pipeline invocations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.ListInvocations(cmd.Context(), store.Filter{
			Flow:      auditFlow,
			ProductID: auditProductID,
			Limit:     auditLimit,
		})
		if err != nil {
			return eris.Wrap(err, "audit: list invocations")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditFlow, "flow", "", `filter by flow ("chat" or "form")`)
	auditCmd.Flags().StringVar(&auditProductID, "product", "", "filter by product ID")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum rows to return")
	rootCmd.AddCommand(auditCmd)
}

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Replay every journal and report positions that drifted from it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		services, err := newServices(cfg, db)
		if err != nil {
			return err
		}

		reports, err := services.Audit.Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		drifted := renderAudit(cmd.OutOrStdout(), reports)
		failOnDrift, _ := cmd.Flags().GetBool("fail-on-drift")
		if failOnDrift && drifted > 0 {
			return fmt.Errorf("%d of %d positions drifted from their journal", drifted, len(reports))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().Bool("fail-on-drift", false, "Exit with an error when any position drifted.")
}

// renderAudit writes reports as a table and returns the number of drifted positions.
func renderAudit(w io.Writer, reports []model.Discrepancy) int {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Owner", "Symbol", "Entries", "Stored Qty", "Replayed Qty", "Stored Avg", "Replayed Avg", "Status"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	drifted := 0
	for _, r := range reports {
		status := "ok"
		if !r.Consistent {
			drifted++
			status = "DRIFT"
			if r.ReplayError != "" {
				status = "REPLAY FAILED"
			}
		}
		table.Append([]string{
			r.OwnerID,
			r.Symbol,
			strconv.Itoa(r.EntryCount),
			formatFloat(r.StoredQuantity),
			formatFloat(r.ReplayedQuantity),
			formatFloat(r.StoredAverageCost),
			formatFloat(r.ReplayedAverageCost),
			status,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "", "Drifted", strconv.Itoa(drifted)})
	table.Render()

	return drifted
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadsync/internal/export"
	"github.com/sells-group/leadsync/internal/store"
)

var (
	exportOut   string
	exportSheet string
	exportLimit int
	exportRun   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export journaled leads to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("journal"); err != nil {
			return err
		}

		journal, err := initJournal(cmd.Context())
		if err != nil {
			return err
		}
		defer journal.Close()

		leads, err := journal.ListLeads(cmd.Context(), store.LeadFilter{
			RunID: exportRun,
			Limit: exportLimit,
		})
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(exportOut, exportSheet, leads); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("leads", len(leads)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "leads.xlsx", "output workbook path")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", "Leads", "worksheet name")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 10000, "maximum number of leads to export")
	exportCmd.Flags().StringVar(&exportRun, "run", "", "only export leads from this run")
	rootCmd.AddCommand(exportCmd)
}

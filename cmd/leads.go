package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadsync/internal/store"
)

var (
	leadsLimit int
	leadsRun   string
	leadsSince string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List leads recorded in the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("journal"); err != nil {
			return err
		}

		journal, err := initJournal(cmd.Context())
		if err != nil {
			return err
		}
		defer journal.Close()

		filter := store.LeadFilter{RunID: leadsRun, Limit: leadsLimit}
		if leadsSince != "" {
			since, err := time.Parse(time.RFC3339, leadsSince)
			if err != nil {
				return err
			}
			filter.Since = since
		}

		leads, err := journal.ListLeads(cmd.Context(), filter)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	},
}

func init() {
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 100, "maximum number of leads to list")
	leadsCmd.Flags().StringVar(&leadsRun, "run", "", "only list leads from this run")
	leadsCmd.Flags().StringVar(&leadsSince, "since", "", "only list leads processed after this RFC 3339 time")
	rootCmd.AddCommand(leadsCmd)
}

package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadsync/internal/checkpoint"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or adjust the poll checkpoint",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current checkpoint time",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := checkpoint.NewFile(cfg.Checkpoint.Path)
		ts, err := store.Read(cmd.Context())
		if err != nil {
			return err
		}
		if ts.IsZero() {
			fmt.Println("no checkpoint")
			return nil
		}
		fmt.Println(ts.Format(time.RFC3339))
		return nil
	},
}

var checkpointSetCmd = &cobra.Command{
	Use:   "set <rfc3339-time>",
	Short: "Set the checkpoint to a specific time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := time.Parse(time.RFC3339, args[0])
		if err != nil {
			return eris.Wrap(err, "checkpoint: parse time")
		}
		store := checkpoint.NewFile(cfg.Checkpoint.Path)
		if err := store.Write(cmd.Context(), ts); err != nil {
			return err
		}
		fmt.Println(ts.Format(time.RFC3339))
		return nil
	},
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the checkpoint so the next run bootstraps",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := checkpoint.NewFile(cfg.Checkpoint.Path)
		if err := store.Write(cmd.Context(), time.Time{}); err != nil {
			return err
		}
		fmt.Println("checkpoint cleared")
		return nil
	},
}

func init() {
	checkpointCmd.AddCommand(checkpointShowCmd, checkpointSetCmd, checkpointClearCmd)
	rootCmd.AddCommand(checkpointCmd)
}

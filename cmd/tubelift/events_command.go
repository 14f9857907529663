package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent event log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			events, err := client.Events(cmd.Context(), limit)
			if err != nil {
				return wrapAPIError(err, ctx.apiAddress())
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events recorded")
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, ev := range events {
				rows = append(rows, []string{strconv.FormatInt(ev.ID, 10), ev.CreatedAt, ev.UserID, ev.Message})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Time", "Submitter", "Message"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

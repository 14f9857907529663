package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <url>",
		Short: "Queue a video URL for download and upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.Submit(cmd.Context(), ctx.submitter(), strings.TrimSpace(args[0]))
			if err != nil {
				return wrapAPIError(err, ctx.apiAddress())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Message)
			fmt.Fprintf(out, "Job %s queued for %s\n", resp.Job.ID, resp.Job.SubmitterID)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your position in the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Queue(cmd.Context(), ctx.submitter())
			if err != nil {
				return wrapAPIError(err, ctx.apiAddress())
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.Message)
			return nil
		},
	}
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Remove all of your pending submissions",
		Long:  "Remove all of your pending submissions. A job that is already running is not interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := client.Cancel(cmd.Context(), ctx.submitter())
			if err != nil {
				return wrapAPIError(err, ctx.apiAddress())
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

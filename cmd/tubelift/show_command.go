package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"tubelift/internal/api"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show daemon, pipeline, and dependency status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				if errors.Is(err, api.ErrDaemonUnavailable) {
					for _, line := range renderSectionHeader("Daemon", colorize) {
						fmt.Fprintln(out, line)
					}
					fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not running at "+ctx.apiAddress(), colorize))
					return nil
				}
				return err
			}
			writeDaemonStatus(out, status, colorize)
			return nil
		},
	}
}

func writeDaemonStatus(out io.Writer, status api.DaemonStatus, colorize bool) {
	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	if status.Running {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running (pid "+strconv.Itoa(status.PID)+")", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "stopped", colorize))
	}
	fmt.Fprintln(out, renderValueLine("Storage", status.Storage))
	fmt.Fprintln(out, renderValueLine("Notifications", status.Transport))
	fmt.Fprintln(out, renderValueLine("Lock file", status.LockFilePath))
	if status.EventDBPath != "" {
		fmt.Fprintln(out, renderValueLine("Event DB", status.EventDBPath))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Pipeline", colorize) {
		fmt.Fprintln(out, line)
	}
	wf := status.Workflow
	state := statusInfo
	if wf.State == "busy" {
		state = statusOK
	}
	fmt.Fprintln(out, renderStatusLine("State", state, wf.State, colorize))
	if wf.Active != nil {
		active := wf.Active.URL + " for " + wf.Active.SubmitterID
		if wf.ActiveSince != "" {
			active += " since " + wf.ActiveSince
		}
		fmt.Fprintln(out, renderValueLine("Active", active))
	}
	fmt.Fprintln(out, renderValueLine("Pending", strconv.Itoa(wf.Pending)))
	if len(wf.Queue) > 0 {
		rows := make([][]string, 0, len(wf.Queue))
		for i, job := range wf.Queue {
			rows = append(rows, []string{strconv.Itoa(i + 1), job.SubmitterID, job.URL})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Submitter", "URL"}, rows, []columnAlignment{alignRight}))
	}
	fmt.Fprintln(out, renderValueLine("Processed", strconv.FormatInt(wf.Processed, 10)))
	failedKind := statusOK
	if wf.Failed > 0 {
		failedKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Failed", failedKind, strconv.FormatInt(wf.Failed, 10), colorize))
	if wf.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusError, wf.LastError, colorize))
	}
	if last := wf.LastJob; last != nil {
		summary := last.Outcome + " " + last.Job.URL
		if last.Link != "" {
			summary += " -> " + last.Link
		}
		fmt.Fprintln(out, renderValueLine("Last job", summary))
	}

	if len(status.Dependencies) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, dep := range status.Dependencies {
		kind := statusOK
		message := dep.Command
		if dep.Version != "" {
			message += " " + dep.Version
		}
		if !dep.Available {
			kind = statusError
			if dep.Optional {
				kind = statusWarn
			}
			if dep.Detail != "" {
				message = dep.Detail
			}
		}
		fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
	}
}

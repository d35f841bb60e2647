package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"framemark/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the state of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(args[0])
			if err != nil {
				return err
			}
			printStatus(cmd, status)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, status api.StatusPayload) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintf(out, "Job %s\n", status.JobID)
	fmt.Fprintln(out, renderStatusLine("Status", jobStatusKind(status.Status), status.Status, colorize))
	if status.SourceName != "" {
		fmt.Fprintln(out, renderStatusLine("Source", statusInfo, status.SourceName, colorize))
	}
	if status.Prompt != "" {
		fmt.Fprintln(out, renderStatusLine("Prompt", statusInfo, status.Prompt, colorize))
	}
	if status.FramesTotal > 0 {
		frames := fmt.Sprintf("%d of %d kept", status.FramesKept, status.FramesTotal)
		kind := statusOK
		if status.FramesKept < status.FramesTotal {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine("Frames", kind, frames, colorize))
	}
	if status.Error != "" {
		fmt.Fprintln(out, renderStatusLine("Error", statusError, status.Error, colorize))
	}
	if status.DownloadURL != "" {
		fmt.Fprintln(out, renderStatusLine("Download", statusOK, status.DownloadURL, colorize))
	}
}

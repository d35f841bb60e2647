package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"framemark/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs tracked by the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			jobs, err := client.Jobs()
			if err != nil {
				return err
			}
			if statusFilter != "" {
				jobs = filterJobs(jobs, statusFilter)
			}
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs")
				return nil
			}
			fmt.Fprintln(out, renderJobsTable(jobs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only show jobs with this status")
	return cmd
}

func filterJobs(jobs []api.StatusPayload, status string) []api.StatusPayload {
	filtered := make([]api.StatusPayload, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == status {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

func renderJobsTable(jobs []api.StatusPayload) string {
	headers := []string{"Job", "Status", "Source", "Prompt", "Frames", "Submitted"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}

	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		frames := ""
		if job.FramesTotal > 0 {
			frames = strconv.Itoa(job.FramesKept) + "/" + strconv.Itoa(job.FramesTotal)
		}
		rows = append(rows, []string{
			job.JobID,
			job.Status,
			job.SourceName,
			job.Prompt,
			frames,
			job.SubmittedAt,
		})
	}
	return renderTable(headers, rows, aligns)
}

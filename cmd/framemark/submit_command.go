package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var prompt string
	var wait bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "submit <video-file>",
		Short: "Upload a video for segmentation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			jobID, err := client.Submit(args[0], prompt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job accepted: %s\n", jobID)
			if !wait {
				fmt.Fprintf(out, "Check progress with `framemark status %s`\n", jobID)
				return nil
			}

			for {
				status, err := client.Status(jobID)
				if err != nil {
					return err
				}
				switch status.Status {
				case "completed":
					fmt.Fprintf(out, "Job completed, download with `framemark download %s`\n", jobID)
					return nil
				case "failed":
					return fmt.Errorf("job failed: %s", status.Error)
				}
				time.Sleep(pollInterval)
			}
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Text prompt selecting what to segment")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the job reaches a terminal state")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "Polling interval used with --wait")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon and stage tool readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			report, err := client.Health()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			overall := statusOK
			if report.Status != "ok" {
				overall = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", overall, report.Status, colorize))
			for _, st := range report.Stages {
				kind := statusOK
				message := "ready"
				if !st.Ready {
					kind = statusError
					message = st.Detail
				}
				fmt.Fprintln(out, renderStatusLine(st.Name, kind, message, colorize))
			}
			if report.Status != "ok" {
				return fmt.Errorf("one or more stage tools are unavailable")
			}
			return nil
		},
	}
}

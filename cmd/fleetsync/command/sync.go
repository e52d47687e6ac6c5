// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/spf13/cobra"
)

var syncFlags struct {
	from, to string
}

var syncCmd = &cobra.Command{
	Use:   "sync <task>",
	Short: "Run one sync task over all active parks",
	Long: `Run one sync task over all active parks and print its report.
The task may be one of: ` + taskNames() + `.

The orders task accepts a --from and --to window. Both or none of
them must be given; a missing window asks for the trailing window
which ends now. Boundaries with a zone offset (RFC3339) are fixed
instants, while boundaries like 2024-01-02T15:04:05 or 2024-01-02 are
interpreted in the time zone of each park.`,
	RunE: runSync,
	Args: cobra.ExactArgs(1),
}

func taskNames() string {
	names := make([]string, len(model.Tasks))
	for i, t := range model.Tasks {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func runSync(cmd *cobra.Command, args []string) error {
	task, err := model.ParseTask(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], err)
	}
	w, err := model.ParseWindow(syncFlags.from, syncFlags.to)
	if err != nil {
		return fmt.Errorf("parsing window: %w", err)
	}
	ctx, stop := signalContext()
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	report, err := a.sync.Run(ctx, task, w)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("running %s: %w", task, err)
	}
	if err = report.Err(); err != nil {
		return fmt.Errorf("%s parks: %w", report.Status(), err)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *model.SyncReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(
		out, "%s %s in %s\n",
		r.Task, r.Status(), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
	)
	for _, pr := range r.Parks {
		status := "ok"
		if pr.Err != nil {
			status = pr.Err.Error()
		}
		fmt.Fprintf(
			out, "  %s: upserted=%d skipped=%d %s\n",
			pr.Park, pr.Upserted, pr.SkippedTotal(), status,
		)
	}
}

func init() {
	syncCmd.Flags().StringVar(&syncFlags.from, "from", "", "window start")
	syncCmd.Flags().StringVar(&syncFlags.to, "to", "", "window end")
	rootCmd.AddCommand(syncCmd)
}

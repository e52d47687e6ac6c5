// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"
	"time"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/spf13/cobra"
)

var backfillFlags struct {
	job      string
	from, to string
	status   bool
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Synchronize orders and transactions day by day",
	Long: `Synchronize the orders and transactions of all active parks
for the [--from, --to] dates (inclusive), one day at a time.
The last completed day is persisted per --job, so running the same
job again resumes from the day after it. A failing day stops the
backfill. The --to date defaults to today and --from defaults to --to.

With --status, only the progress of the job is printed.`,
	RunE: backfill,
	Args: cobra.NoArgs,
}

func backfill(cmd *cobra.Command, _ []string) error {
	to := model.DateOf(time.Now())
	var err error
	if backfillFlags.to != "" {
		if to, err = model.ParseDate(backfillFlags.to); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}
	from := to
	if backfillFlags.from != "" {
		if from, err = model.ParseDate(backfillFlags.from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	ctx, stop := signalContext()
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	var st model.BackfillStatus
	if backfillFlags.status {
		st, err = a.sync.BackfillStatus(ctx, backfillFlags.job, to)
	} else {
		st, err = a.sync.Backfill(ctx, backfillFlags.job, from, to)
	}
	if st.Job != "" {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s", st.Job, st.State)
		if !st.Watermark.IsZero() {
			fmt.Fprintf(out, " (completed up to %s)", st.Watermark)
		}
		fmt.Fprintln(out)
	}
	if err != nil {
		return fmt.Errorf("backfilling %q: %w", backfillFlags.job, err)
	}
	return nil
}

func init() {
	f := backfillCmd.Flags()
	f.StringVar(&backfillFlags.job, "job", "daily", "watermark name")
	f.StringVar(&backfillFlags.from, "from", "", "first date (YYYY-MM-DD)")
	f.StringVar(&backfillFlags.to, "to", "", "last date (YYYY-MM-DD)")
	f.BoolVar(&backfillFlags.status, "status", false, "only print the progress")
	rootCmd.AddCommand(backfillCmd)
}

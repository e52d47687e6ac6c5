// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package command provides the root and sub-commands of fleetsync.
// Commands are organized using the cobra library.
// The root command starts the REST API server and the scheduler, while
// other sub-commands run one action and exit.
//
//	./fleetsync [-c /path/of/config.yaml]       # serve
//	./fleetsync db init-dev [-c /path/of/config.yaml]
//	./fleetsync db init-prod [-c /path/of/config.yaml]
//	./fleetsync sync orders [--from 2024-01-01 --to 2024-01-02]
//	./fleetsync backfill --job daily --from 2024-01-01 --to 2024-01-31
//	./fleetsync parks add --id P --client-id C --api-key K
//	./fleetsync parks list
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/momeni/fleetsync/pkg/adapter/restful/gin/routes"
	"github.com/momeni/fleetsync/pkg/adapter/supervisor"
	"github.com/momeni/fleetsync/pkg/core/log"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "fleetsync",
	Short: "Synchronizes fleet data from the fleet API into PostgreSQL",
	Long: `Synchronizes the work rules, cars, drivers, orders, and
transactions of the registered parks from the fleet API into a
PostgreSQL database.
Without a sub-command, the REST API server and the scheduler are
started and supervised until SIGINT or SIGTERM is received. The
scheduler triggers the sync tasks based on the scheduler.tasks cron
expressions of the config file and the REST API allows the parks to
be managed and the tasks to be triggered manually.`,
	RunE: serve,
	Args: cobra.NoArgs,
}

func serve(_ *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	e := a.cfg.Gin.NewEngine(a.logger)
	routes.Register(e, a.parks, a.sync)

	sup := supervisor.New(a.logger)
	sup.Add(supervisor.NewHTTPServer(a.cfg.Gin.Listen, e))
	sch, err := a.cfg.Scheduler.NewScheduler(a.sync, a.logger)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if sch != nil {
		log.Info(ctx, "scheduling tasks", slog.Any("tasks", sch.Tasks()))
		sup.Add(sch)
	}
	log.Info(ctx, "serving", slog.String("listen", a.cfg.Gin.Listen))
	err = sup.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	return nil
}

// signalContext returns a context which is cancelled on the first
// SIGINT or SIGTERM signal.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
}

// Execute runs the rootCmd which in turn parses CLI arguments and
// flags and runs the most specific cobra command. The exit code is
// zero for success and one for failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(fixConfigPath)
	rootCmd.PersistentFlags().StringVarP(
		&cfgPath, "config", "c", "", "config file path",
	)
}

// fixConfigPath ensures that cfgPath is set respectively by either the
// CLI args, the CONFIG_FILE environment variable, or its default value.
func fixConfigPath() {
	if cfgPath != "" {
		return
	}
	var found bool
	if cfgPath, found = os.LookupEnv("CONFIG_FILE"); !found {
		cfgPath = "configs/sample-config.yaml"
	}
}

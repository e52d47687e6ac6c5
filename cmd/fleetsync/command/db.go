// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/momeni/fleetsync/pkg/adapter/config"
	"github.com/momeni/fleetsync/pkg/core/usecase/schemauc"
	"github.com/spf13/cobra"
)

const credsRenewalMessage = `
The admin role password is read from the .pgpass file of the
database.pass-dir directory. New random passwords are generated for
the admin and normal roles and written to the .pgpass.new file, which
replaces the .pgpass file after the database changes are committed.`

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used.`,
}

var initDevCmd = &cobra.Command{
	Use:   "init-dev",
	Short: "Initialize database contents with development data",
	Long: `Initialize database contents with development suitable data,
i.e., the tables and a sample inactive park.
` + credsRenewalMessage + `

The fleetsyncX schema (for the X major schema version of the config
file) is dropped with all of its contents and created again.`,
	RunE: initDB((*schemauc.InitDBUseCase).InitDev),
	Args: cobra.NoArgs,
}

var initProdCmd = &cobra.Command{
	Use:   "init-prod",
	Short: "Initialize database contents with production suitable data",
	Long: `Initialize database contents with production suitable data,
i.e., the empty tables. No changes will be made to the config file.
` + credsRenewalMessage + `

The fleetsyncX schema (for the X major schema version of the config
file) is dropped with all of its contents and created again.`,
	RunE: initDB((*schemauc.InitDBUseCase).InitProd),
	Args: cobra.NoArgs,
}

func initDB(
	f func(*schemauc.InitDBUseCase, context.Context) error,
) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()
		c, err := config.LoadFile(cfgPath)
		if err != nil {
			return fmt.Errorf("config.LoadFile(%q): %w", cfgPath, err)
		}
		c.Log.Setup(os.Stderr)
		if err = f(schemauc.NewInitDB(c), ctx); err != nil {
			return fmt.Errorf("initializing DB: %w", err)
		}
		return nil
	}
}

func init() {
	dbCmd.AddCommand(initDevCmd)
	dbCmd.AddCommand(initProdCmd)
	rootCmd.AddCommand(dbCmd)
}

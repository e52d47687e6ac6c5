// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/momeni/fleetsync/pkg/core/model"
	"github.com/spf13/cobra"
)

var parksCmd = &cobra.Command{
	Use:   "parks",
	Short: "Parks management actions",
}

var parkFlags struct {
	model.Park
	inactive bool
}

var parksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a park",
	Long: `Register a park after checking its credentials with the fleet
API. The name and city are fetched from the fleet API if they are not
given. Parks without --time-zone use the sync.time-zone setting.`,
	RunE: addPark,
	Args: cobra.NoArgs,
}

func addPark(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	p := parkFlags.Park
	p.IsActive = !parkFlags.inactive
	created, err := a.parks.Register(ctx, &p)
	if err != nil {
		return fmt.Errorf("registering park: %w", err)
	}
	fmt.Fprintf(
		cmd.OutOrStdout(), "registered %s (%s, %s)\n",
		created.ExternalID, created.Name, created.City,
	)
	return nil
}

var parksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered parks",
	RunE:  listParks,
	Args:  cobra.NoArgs,
}

func listParks(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	parks, err := a.parks.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCITY\tTIME ZONE\tACTIVE")
	for _, p := range parks {
		fmt.Fprintf(
			tw, "%s\t%s\t%s\t%s\t%t\n",
			p.ExternalID, p.Name, p.City, p.TimeZone, p.IsActive,
		)
	}
	return tw.Flush()
}

func init() {
	f := parksAddCmd.Flags()
	f.StringVar(&parkFlags.ExternalID, "id", "", "park id of the fleet API")
	f.StringVar(&parkFlags.ClientID, "client-id", "", "client id credential")
	f.StringVar(&parkFlags.APIKey, "api-key", "", "API key credential")
	f.StringVar(&parkFlags.Name, "name", "", "park name")
	f.StringVar(&parkFlags.City, "city", "", "park city")
	f.StringVar(&parkFlags.TimeZone, "time-zone", "", "IANA time zone")
	f.BoolVar(&parkFlags.inactive, "inactive", false, "register as inactive")
	for _, name := range []string{"id", "client-id", "api-key"} {
		_ = parksAddCmd.MarkFlagRequired(name)
	}
	parksCmd.AddCommand(parksAddCmd)
	parksCmd.AddCommand(parksListCmd)
	rootCmd.AddCommand(parksCmd)
}

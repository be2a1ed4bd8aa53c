package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"crowdfund/internal/client"
)

func campaignsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "List and inspect campaigns",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List campaigns, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			campaigns, err := api.ListCampaigns(cmd.Context())
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), campaigns)
			}
			if len(campaigns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No campaigns yet.")
				return nil
			}
			for _, c := range campaigns {
				printCampaignLine(cmd.OutOrStdout(), c)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Show a campaign with its completed contributions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			c, err := api.GetCampaign(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			out := cmd.OutOrStdout()
			printCampaignLine(out, *c)
			if c.Description != "" {
				fmt.Fprintf(out, "  %s\n", c.Description)
			}
			for _, contrib := range c.Contributions {
				fmt.Fprintf(out, "  + %s from %s\n", contrib.Amount.StringFixed(2), contrib.ContributorName)
			}
			return nil
		},
	})

	return cmd
}

func printCampaignLine(w io.Writer, c client.Campaign) {
	fmt.Fprintf(w, "%s  %-30s %s / %s  $%s\n", c.ID, c.Name, c.Current.StringFixed(2), c.Goal.StringFixed(2), c.Handle)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

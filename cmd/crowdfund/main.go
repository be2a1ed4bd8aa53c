package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crowdfund/internal/client"
	"crowdfund/internal/infra"
)

var Version = "dev"

type rootOptions struct {
	apiURL  string
	userID  string
	locale  string
	asJSON  bool
	verbose bool
}

func (o *rootOptions) logger() infra.Logger {
	if o.verbose {
		return infra.NewLogger("development")
	}
	return *infra.NopLogger()
}

func (o *rootOptions) client() (*client.Client, error) {
	logger := o.logger()
	return client.New(client.Options{BaseURL: o.apiURL, UserID: o.userID, Locale: o.locale, Logger: &logger})
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "crowdfund",
		Short:         "Browse campaigns and contribute through the crowdfunding API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultAPI := os.Getenv("CROWDFUND_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api", defaultAPI, "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.userID, "user", "", "user id sent as X-User-ID")
	rootCmd.PersistentFlags().StringVar(&opts.locale, "locale", "pt-BR", "locale for checkout descriptions (pt-BR, en)")
	rootCmd.PersistentFlags().BoolVarP(&opts.asJSON, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log API calls")

	rootCmd.AddCommand(campaignsCmd(opts))
	rootCmd.AddCommand(contributionCmd(opts))
	rootCmd.AddCommand(contributeCmd(opts))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"crowdfund/internal/bootstrap"
	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/providers/infinitepay"
	"crowdfund/internal/saga"
)

type sagaTarget struct {
	campaignID    string
	campaignName  string
	handle        string
	contributions saga.ContributionPort
	checkout      saga.CheckoutPort
	close         func()
}

// remoteTarget drives the saga through the API.
func remoteTarget(ctx context.Context, opts *rootOptions, campaignID string) (*sagaTarget, error) {
	api, err := opts.client()
	if err != nil {
		return nil, err
	}
	campaign, err := api.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return &sagaTarget{
		campaignID:    campaign.ID,
		campaignName:  campaign.Name,
		handle:        campaign.Handle,
		contributions: api,
		checkout:      api,
		close:         func() {},
	}, nil
}

// localTarget opens the configured store and provider directly, for operators
// working next to the database.
func localTarget(ctx context.Context, opts *rootOptions, campaignID string) (*sagaTarget, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := opts.logger()
	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	campaigns, contributions := stores.Services(&logger)
	view, err := campaigns.Get(ctx, campaignID)
	if err != nil {
		stores.Close()
		return nil, err
	}
	ports := saga.LocalPorts{
		Contributions: contributions,
		Gateway: infinitepay.NewClient(infinitepay.Options{
			CheckoutURL:    cfg.CheckoutURL,
			Logger:         &logger,
			RequestTimeout: cfg.CheckoutTimeout,
		}),
		Logger: &logger,
	}
	return &sagaTarget{
		campaignID:    view.Campaign.ID,
		campaignName:  view.Campaign.Name,
		handle:        view.Campaign.Handle,
		contributions: ports,
		checkout:      ports,
		close:         stores.Close,
	}, nil
}

func contributionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contribution",
		Short: "Inspect contributions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Show a contribution and its campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.client()
			if err != nil {
				return err
			}
			c, err := api.GetContribution(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s by %s <%s>\n", c.ID, c.Status, c.Amount.StringFixed(2), c.ContributorName, c.ContributorEmail)
			if c.TransactionNSU != nil {
				fmt.Fprintf(out, "  transaction: %s\n", *c.TransactionNSU)
			}
			if c.Campaign != nil {
				printCampaignLine(out, *c.Campaign)
			}
			return nil
		},
	})
	return cmd
}

// contributeCmd drives the full contribution flow against the API with a
// simulated payment runtime standing in for the host app.
func contributeCmd(opts *rootOptions) *cobra.Command {
	var (
		amount  string
		name    string
		email   string
		phone   string
		decline bool
		local   bool
		wait    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "contribute [campaign-id]",
		Short: "Contribute to a campaign through checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := domain.ParsePositiveAmount("amount", amount)
			if err != nil {
				return err
			}
			open := remoteTarget
			if local {
				open = localTarget
			}
			target, err := open(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer target.close()

			runtime := infinitepay.NewMockRuntime()
			runtime.Amount = domain.ToMinorUnits(value)
			if decline {
				runtime.FailWith = errors.New("payment declined")
			}
			holder := infinitepay.NewRuntimeHolder()
			holder.Inject(runtime)

			out := cmd.OutOrStdout()
			flow := saga.New(saga.Config{
				Contributions: target.contributions,
				Checkout:      target.checkout,
				Runtime:       holder,
				RuntimeWait:   wait,
				Observe: func(state saga.State, _ saga.Outcome) {
					if !opts.asJSON {
						fmt.Fprintf(out, "-> %s\n", state)
					}
				},
			})
			outcome, runErr := flow.Run(cmd.Context(), saga.Intent{
				CampaignID:       target.campaignID,
				CampaignName:     target.campaignName,
				Handle:           target.handle,
				Amount:           value,
				ContributorName:  name,
				ContributorEmail: email,
				ContributorPhone: phone,
				Locale:           opts.locale,
			})
			if opts.asJSON {
				if err := writeJSON(out, outcome); err != nil {
					return err
				}
			} else if runErr == nil {
				fmt.Fprintf(out, "Contribution %s completed (transaction %s)\n", outcome.ContributionID, outcome.TransactionNSU)
			}
			if runErr != nil {
				var sagaErr *saga.Error
				if errors.As(runErr, &sagaErr) && sagaErr.LeftPending() {
					return fmt.Errorf("%w; contribution %s remains pending", runErr, sagaErr.ContributionID)
				}
				return runErr
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount in BRL, e.g. 25.50")
	cmd.Flags().StringVar(&name, "name", "", "contributor name")
	cmd.Flags().StringVar(&email, "email", "", "contributor email")
	cmd.Flags().StringVar(&phone, "phone", "", "contributor phone number")
	cmd.Flags().BoolVar(&decline, "decline", false, "simulate a declined payment")
	cmd.Flags().BoolVar(&local, "local", false, "use the configured store and provider directly instead of the API")
	cmd.Flags().DurationVar(&wait, "runtime-wait", 2*time.Second, "how long to wait for the payment runtime")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

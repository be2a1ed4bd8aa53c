package saga

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/providers/infinitepay"
	"crowdfund/internal/service"
)

// LocalPorts runs the saga against in-process services rather than over HTTP.
type LocalPorts struct {
	Contributions *service.ContributionService
	Gateway       *infinitepay.Client
	Logger        *infra.Logger
}

func (p LocalPorts) CreateContribution(ctx context.Context, in domain.ContributionInput) (*domain.Contribution, error) {
	return p.Contributions.Create(ctx, in)
}

func (p LocalPorts) CompleteContribution(ctx context.Context, id, transactionNSU string) (*domain.Contribution, error) {
	return p.Contributions.UpdateStatus(ctx, id, domain.ContributionCompleted, &transactionNSU)
}

func (p LocalPorts) CreateCheckoutLink(ctx context.Context, contributionID string, req infinitepay.CheckoutRequest) (*infinitepay.CheckoutLink, error) {
	link, err := p.Gateway.CreateCheckoutLink(ctx, req)
	if err != nil {
		return nil, err
	}
	if contributionID != "" {
		if err := p.Contributions.AttachOrder(ctx, contributionID, req.OrderNSU); err != nil {
			logger := p.Logger
			if logger == nil {
				logger = infra.NopLogger()
			}
			logger.Warn().Err(err).Str("contribution_id", contributionID).Str("order_nsu", req.OrderNSU).Msg("order reference not recorded")
		}
	}
	return link, nil
}

var (
	_ ContributionPort = LocalPorts{}
	_ CheckoutPort     = LocalPorts{}
)

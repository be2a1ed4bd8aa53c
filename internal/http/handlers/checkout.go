package handlers

import (
	"errors"
	"net/http"
	"strings"

	"crowdfund/internal/domain"
	"crowdfund/internal/middleware"
	"crowdfund/internal/providers/infinitepay"
)

type checkoutRequest struct {
	infinitepay.CheckoutRequest
	ContributionID string `json:"contributionId,omitempty"`
}

// CreateCheckout relays a checkout-link request to the provider and returns
// its JSON untouched. A missing order_nsu is generated here, and items without
// a description get the contribution label in the request locale.
func (a *App) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.OrderNSU) == "" {
		req.OrderNSU = a.OrderRefs.Next()
	}
	if err := a.describeItems(r, &req); err != nil {
		a.fail(w, r, err, "Contribution not found", "Failed to create checkout")
		return
	}
	link, err := a.Checkout.CreateCheckoutLink(r.Context(), req.CheckoutRequest)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Logger.Error().Err(err).Str("order_nsu", req.OrderNSU).Msg("create checkout failed")
		a.error(w, http.StatusInternalServerError, "Failed to create checkout")
		return
	}
	if id := strings.TrimSpace(req.ContributionID); id != "" {
		if err := a.Contributions.AttachOrder(r.Context(), id, req.OrderNSU); err != nil {
			a.Logger.Warn().Err(err).Str("contribution_id", id).Msg("order reference not recorded")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(link.Raw)
}

// describeItems labels items that arrived without a description. The campaign
// name comes from the linked contribution; without one the handle is used.
func (a *App) describeItems(r *http.Request, req *checkoutRequest) error {
	missing := false
	for _, item := range req.Items {
		if strings.TrimSpace(item.Description) == "" {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	subject := domain.NormalizeHandle(req.Handle)
	if id := strings.TrimSpace(req.ContributionID); id != "" {
		detail, err := a.Contributions.Get(r.Context(), id)
		if err != nil {
			return err
		}
		subject = detail.Campaign.Campaign.Name
	}
	label := infinitepay.LineDescription(middleware.LocaleFromContext(r.Context()), subject)
	for i := range req.Items {
		if strings.TrimSpace(req.Items[i].Description) == "" {
			req.Items[i].Description = label
		}
	}
	return nil
}

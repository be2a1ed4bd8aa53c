package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
)

func (a *App) ContributionsCreate(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	contribution, err := a.Contributions.Create(r.Context(), domain.ContributionInput{
		CampaignID:       req.CampaignID,
		Amount:           string(req.Amount),
		ContributorName:  req.ContributorName,
		ContributorEmail: req.ContributorEmail,
	})
	if err != nil {
		a.fail(w, r, err, "Campaign not found", "Failed to create contribution")
		return
	}
	a.json(w, http.StatusOK, toContributionResponse(*contribution))
}

func (a *App) ContributionsGet(w http.ResponseWriter, r *http.Request) {
	detail, err := a.Contributions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, "Contribution not found", "Failed to fetch contribution")
		return
	}
	a.json(w, http.StatusOK, toContributionDetail(*detail))
}

func (a *App) ContributionsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	status := domain.ContributionStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	contribution, err := a.Contributions.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status, req.TransactionNSU)
	if err != nil {
		a.fail(w, r, err, "Contribution not found", "Failed to update contribution")
		return
	}
	a.json(w, http.StatusOK, toContributionResponse(*contribution))
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/middleware"
)

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	views, err := a.Campaigns.List(r.Context())
	if err != nil {
		a.fail(w, r, err, "Campaign not found", "Failed to fetch campaigns")
		return
	}
	a.json(w, http.StatusOK, toCampaignViews(views))
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = middleware.UserIDFromContext(r.Context())
	}
	campaign, err := a.Campaigns.Create(r.Context(), req.input())
	if err != nil {
		a.fail(w, r, err, "Campaign not found", "Failed to create campaign")
		return
	}
	a.json(w, http.StatusOK, toCampaignResponse(*campaign))
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	view, err := a.Campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err, "Campaign not found", "Failed to fetch campaign")
		return
	}
	a.json(w, http.StatusOK, toCampaignView(*view))
}

// CampaignsUpdate edits name, description, images, goal and handle. The owner
// and static checkout URL are fixed at creation.
func (a *App) CampaignsUpdate(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := decodeJSON(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	actor := middleware.UserIDFromContext(r.Context())
	campaign, err := a.Campaigns.Update(r.Context(), chi.URLParam(r, "id"), actor, req.input())
	if err != nil {
		a.fail(w, r, err, "Campaign not found", "Failed to update campaign")
		return
	}
	a.json(w, http.StatusOK, toCampaignResponse(*campaign))
}

func (a *App) CampaignsByOwner(w http.ResponseWriter, r *http.Request) {
	views, err := a.Campaigns.ListByOwner(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		a.fail(w, r, err, "Campaign not found", "Failed to fetch campaigns")
		return
	}
	a.json(w, http.StatusOK, toCampaignViews(views))
}

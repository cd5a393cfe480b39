package web

import (
	"net/http"
	"time"

	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/proto"
)

func getEditions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	limit := queryInt(r, "limit", backend.DefaultEditionsLimit)
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	editions, err := be.Editions(ctx, limit, offset)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"editions": editions})
}

func getEdition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	edition, err := backend.FromContext(ctx).Edition(ctx, id, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, edition)
}

func postEditionSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	res, err := backend.FromContext(ctx).ToggleSave(ctx, id, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

func postEditionFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	res, err := backend.FromContext(ctx).ToggleFollow(ctx, id, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

func postEditionClick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := backend.FromContext(ctx).RecordClick(ctx, id, callerID(r)); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type opportunityRequest struct {
	OrganizationID int64      `json:"organizationId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Edition        string     `json:"edition"`
	StartsAt       *time.Time `json:"startsAt"`
	EndsAt         *time.Time `json:"endsAt"`
}

type opportunityResponse struct {
	Opportunity proto.Opportunity `json:"opportunity"`
	Edition     proto.Edition     `json:"edition"`
}

func postOpportunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req opportunityRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	opp, edition, err := backend.FromContext(ctx).CreateOpportunity(ctx, proto.UserFromContext(ctx), backend.OpportunityOptions{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Edition:        req.Edition,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, opportunityResponse{Opportunity: opp, Edition: edition})
}

type editionRequest struct {
	Name     string     `json:"name"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

func postOpportunityEdition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req editionRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	edition, err := backend.FromContext(ctx).CreateEdition(ctx, proto.UserFromContext(ctx), id, req.Name, req.StartsAt, req.EndsAt)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, edition)
}

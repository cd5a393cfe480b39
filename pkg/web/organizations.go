package web

import (
	"encoding/json"
	"net/http"

	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// getOrganizations lists approved organizations. Callers allowed to manage
// organizations may pass ?status= to see pending or rejected ones.
func getOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := proto.OrganizationApproved
	if s, ok := r.URL.Query()["status"]; ok && access.FromContext(ctx).Can(access.ManageOrganizations) {
		status = s[0]
	}

	orgs, err := backend.FromContext(ctx).Organizations(ctx, status)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"organizations": orgs})
}

type organizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

func postOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req organizationRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	org, err := backend.FromContext(ctx).RequestOrganization(ctx, proto.UserFromContext(ctx), req.Name, req.Description, req.Website)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, org)
}

type approvalRequest struct {
	Approved *bool `json:"approved"`
}

func patchOrganizationApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req approvalRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if req.Approved == nil {
		renderError(w, r, proto.NewValidationError("approved", "is required"))
		return
	}

	org, err := backend.FromContext(ctx).ReviewOrganization(ctx, proto.UserFromContext(ctx), id, *req.Approved)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, org)
}

func getOrganizationEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	events, err := backend.FromContext(ctx).OrganizationEvents(ctx, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]json.RawMessage{"events": events})
}

type eventsRequest struct {
	Events json.RawMessage `json:"events"`
}

func putOrganizationEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req eventsRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := backend.FromContext(ctx).SetOrganizationEvents(ctx, proto.UserFromContext(ctx), id, req.Events); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]json.RawMessage{"events": req.Events})
}

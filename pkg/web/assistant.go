package web

import (
	"net/http"

	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/search"
)

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func postAssistantSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	matches, err := backend.FromContext(ctx).Search(ctx, proto.UserFromContext(ctx), req.Query, req.Limit)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if matches == nil {
		matches = []search.Match{}
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pathwayhq/pathway/pkg/backend"
)

func getSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := backend.FromContext(ctx).Setting(ctx, mux.Vars(r)["key"])
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, s)
}

type settingRequest struct {
	Value string `json:"value"`
}

func putSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := mux.Vars(r)["key"]
	var req settingRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := backend.FromContext(ctx).SetSetting(ctx, key, req.Value); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, backend.Setting{Key: key, Value: req.Value})
}

func deleteSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := backend.FromContext(ctx).DeleteSetting(ctx, mux.Vars(r)["key"]); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"success": true})
}

package web

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
)

// cronAuthorized reports whether r carries the configured cron secret.
// Requests are always authorized when no secret is configured.
func cronAuthorized(r *http.Request) bool {
	cfg := config.FromContext(r.Context())
	if cfg.Cron.Secret == "" {
		return true
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Cron.Secret)) == 1
}

// getCronPopularity recomputes edition popularity scores.
func getCronPopularity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !cronAuthorized(r) {
		renderUnauthorized(w, r)
		return
	}

	res, err := backend.FromContext(ctx).RecomputePopularity(ctx)
	if err != nil {
		log.FromContext(ctx).Error("popularity recompute failed", "err", err, "updated", res.Updated)
		renderJSON(w, http.StatusInternalServerError, res)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/pathwayhq/pathway/pkg/db"
)

// HealthController registers the probe routes.
func HealthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/livez", getLiveness).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", getReadiness).Methods(http.MethodGet, http.MethodHead)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func getLiveness(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// getReadiness reports ready once the database answers a ping within
// two seconds.
func getReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := db.FromContext(ctx).PingContext(ctx); err != nil {
		log.FromContext(ctx).Error("database ping failed", "err", err)
		renderJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Checks: map[string]string{"database": err.Error()},
		})
		return
	}
	renderJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Checks: map[string]string{"database": time.Since(start).Round(time.Millisecond).String()},
	})
}

package web

import (
	"net/http"

	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/proto"
)

func getAdvisorAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := backend.FromContext(ctx).AdvisorStats(ctx, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, stats)
}

// getSchoolAnalytics returns a school's statistics. Only admins may look
// at schools other than their own.
func getSchoolAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	user := proto.UserFromContext(ctx)
	if user.Role() != access.Admin && user.SchoolID() != id {
		renderForbidden(w, r)
		return
	}

	stats, err := backend.FromContext(ctx).SchoolStats(ctx, id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, stats)
}

package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/csrf"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/ratelimit"
)

type middleware = func(http.Handler) http.Handler

// chain wraps h with mws, the first one outermost.
func chain(h http.HandlerFunc, mws ...middleware) http.Handler {
	var handler http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// limiter applies rate limit presets. A nil limiter disables throttling.
type limiter struct {
	*ratelimit.Limiter
}

func (l limiter) limit(c ratelimit.Config) middleware {
	if l.Limiter == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	return ratelimit.Middleware(l.Limiter, c)
}

// APIController registers the JSON API routes. Every route is behind the
// origin guard; the cron endpoint authenticates with its own secret.
func APIController(ctx context.Context, r *mux.Router, rl *ratelimit.Limiter) error {
	cfg := config.FromContext(ctx)
	guard, err := csrf.New(cfg.TrustedOrigins(), cfg.IsProduction() || cfg.HTTP.StrictOrigin)
	if err != nil {
		return fmt.Errorf("create origin guard: %w", err)
	}

	l := limiter{rl}
	can := requireCapability

	// The cron endpoint's bearer token is not a session token.
	r.Handle("/api/cron/popularity", chain(getCronPopularity, csrf.Middleware(guard))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(csrf.Middleware(guard), withAuth)

	api.Handle("/session", chain(postSession, l.limit(ratelimit.Auth))).Methods(http.MethodPost)
	api.Handle("/me", chain(getMe, requireUser)).Methods(http.MethodGet)

	// Opportunities and editions
	api.HandleFunc("/editions", getEditions).Methods(http.MethodGet)
	api.HandleFunc("/editions/{id:[0-9]+}", getEdition).Methods(http.MethodGet)
	api.Handle("/editions/{id:[0-9]+}/save", chain(postEditionSave, requireUser, l.limit(ratelimit.Normal))).Methods(http.MethodPost)
	api.Handle("/editions/{id:[0-9]+}/follow", chain(postEditionFollow, requireUser, l.limit(ratelimit.Normal))).Methods(http.MethodPost)
	api.Handle("/editions/{id:[0-9]+}/click", chain(postEditionClick, l.limit(ratelimit.Relaxed))).Methods(http.MethodPost)
	api.Handle("/opportunities", chain(postOpportunity, can(access.ManageOpportunities))).Methods(http.MethodPost)
	api.Handle("/opportunities/{id:[0-9]+}/editions", chain(postOpportunityEdition, can(access.ManageOpportunities))).Methods(http.MethodPost)

	// Student records
	api.Handle("/activities", chain(getActivities, can(access.LogActivities))).Methods(http.MethodGet)
	api.Handle("/activities", chain(postActivity, can(access.LogActivities), l.limit(ratelimit.Normal))).Methods(http.MethodPost)
	api.Handle("/activities/{id:[0-9]+}", chain(deleteActivity, can(access.LogActivities))).Methods(http.MethodDelete)
	api.Handle("/verifications", chain(getVerifications, can(access.VerifyActivities))).Methods(http.MethodGet)
	api.Handle("/verifications/{id:[0-9]+}", chain(patchVerification, can(access.VerifyActivities))).Methods(http.MethodPatch)
	api.Handle("/volunteering/participations", chain(getParticipations, can(access.LogActivities))).Methods(http.MethodGet)
	api.Handle("/volunteering/participations", chain(postParticipation, can(access.LogActivities), l.limit(ratelimit.Normal))).Methods(http.MethodPost)
	api.Handle("/volunteering/goals", chain(getGoals, can(access.LogActivities))).Methods(http.MethodGet)
	api.Handle("/volunteering/goals", chain(postGoal, can(access.LogActivities))).Methods(http.MethodPost)

	// Organizations
	api.HandleFunc("/organizations", getOrganizations).Methods(http.MethodGet)
	api.Handle("/organizations", chain(postOrganization, requireUser, l.limit(ratelimit.Strict))).Methods(http.MethodPost)
	api.Handle("/organizations/{id:[0-9]+}/approval", chain(patchOrganizationApproval, can(access.ManageOrganizations))).Methods(http.MethodPatch)
	api.HandleFunc("/organizations/{id:[0-9]+}/events", getOrganizationEvents).Methods(http.MethodGet)
	api.Handle("/organizations/{id:[0-9]+}/events", chain(putOrganizationEvents, requireUser)).Methods(http.MethodPut)

	// Advisory groups
	groups := can(access.ManageAdvisoryGroups)
	api.Handle("/advisory/groups", chain(getAdvisoryGroups, groups)).Methods(http.MethodGet)
	api.Handle("/advisory/groups", chain(putAdvisoryGroups, groups)).Methods(http.MethodPut)
	api.Handle("/advisory/groups", chain(postAdvisoryGroup, groups)).Methods(http.MethodPost)
	api.Handle("/advisory/groups/{gid}", chain(patchAdvisoryGroup, groups)).Methods(http.MethodPatch)
	api.Handle("/advisory/groups/{gid}", chain(deleteAdvisoryGroup, groups)).Methods(http.MethodDelete)
	api.Handle("/advisory/groups/{gid}/students", chain(postAdvisoryStudents, groups)).Methods(http.MethodPost)
	api.Handle("/advisory/groups/{gid}/students", chain(deleteAdvisoryStudents, groups)).Methods(http.MethodDelete)

	// Analytics
	api.Handle("/analytics/advisor", chain(getAdvisorAnalytics, can(access.ViewAnalytics))).Methods(http.MethodGet)
	api.Handle("/analytics/schools/{id:[0-9]+}", chain(getSchoolAnalytics, can(access.ViewAnalytics))).Methods(http.MethodGet)

	// Settings
	settings := can(access.ManageSettings)
	api.Handle("/settings/{key}", chain(getSetting, settings)).Methods(http.MethodGet)
	api.Handle("/settings/{key}", chain(putSetting, settings)).Methods(http.MethodPut)
	api.Handle("/settings/{key}", chain(deleteSetting, settings)).Methods(http.MethodDelete)

	// Assistant
	api.Handle("/assistant/search", chain(postAssistantSearch, requireUser, l.limit(ratelimit.AI))).Methods(http.MethodPost)

	api.NotFoundHandler = http.HandlerFunc(renderNotFound)

	return nil
}

// userResponse is the public view of a user.
type userResponse struct {
	ID       int64       `json:"id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Role     access.Role `json:"role"`
	SchoolID int64       `json:"schoolId,omitempty"`
}

func newUserResponse(u proto.User) userResponse {
	return userResponse{
		ID:       u.ID(),
		Email:    u.Email(),
		Name:     u.Name(),
		Role:     u.Role(),
		SchoolID: u.SchoolID(),
	}
}

func getMe(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, newUserResponse(proto.UserFromContext(r.Context())))
}

// callerID returns the authenticated user's id, 0 for anonymous requests.
func callerID(r *http.Request) int64 {
	if u := proto.UserFromContext(r.Context()); u != nil {
		return u.ID()
	}
	return 0
}

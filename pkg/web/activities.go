package web

import (
	"net/http"
	"time"

	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/proto"
)

func getActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activities, err := backend.FromContext(ctx).Activities(ctx, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}

type activityRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Hours       float64 `json:"hours"`
}

func postActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	activity, err := backend.FromContext(ctx).CreateActivity(ctx, callerID(r), backend.ActivityOptions{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Hours:       req.Hours,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, activity)
}

func deleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := backend.FromContext(ctx).DeleteActivity(ctx, callerID(r), id); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func getVerifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activities, err := backend.FromContext(ctx).PendingActivities(ctx)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"activities": activities})
}

type verificationRequest struct {
	Status string `json:"status"`
}

func patchVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	activity, err := backend.FromContext(ctx).VerifyActivity(ctx, proto.UserFromContext(ctx), id, req.Status)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, activity)
}

func getParticipations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ps, err := backend.FromContext(ctx).Participations(ctx, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"participations": ps})
}

type participationRequest struct {
	OrganizationID int64      `json:"organizationId"`
	Description    string     `json:"description"`
	Hours          float64    `json:"hours"`
	OccurredAt     *time.Time `json:"occurredAt"`
}

type participationResponse struct {
	Participation  proto.Participation `json:"participation"`
	CompletedGoals []proto.Goal        `json:"completedGoals"`
}

func postParticipation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req participationRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	opts := backend.ParticipationOptions{
		OrganizationID: req.OrganizationID,
		Description:    req.Description,
		Hours:          req.Hours,
	}
	if req.OccurredAt != nil {
		opts.OccurredAt = *req.OccurredAt
	}

	p, completed, err := backend.FromContext(ctx).LogHours(ctx, callerID(r), opts)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if completed == nil {
		completed = []proto.Goal{}
	}

	renderJSON(w, http.StatusCreated, participationResponse{Participation: p, CompletedGoals: completed})
}

func getGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	goals, err := backend.FromContext(ctx).Goals(ctx, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{"goals": goals})
}

type goalRequest struct {
	TargetHours float64    `json:"targetHours"`
	Deadline    *time.Time `json:"deadline"`
}

func postGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	goal, err := backend.FromContext(ctx).CreateGoal(ctx, callerID(r), req.TargetHours, req.Deadline)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, goal)
}

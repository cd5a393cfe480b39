package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pathwayhq/pathway/pkg/advisory"
	"github.com/pathwayhq/pathway/pkg/backend"
)

type groupsRequest struct {
	Groups []advisory.Group `json:"groups"`
}

type groupRequest struct {
	Name       string   `json:"name"`
	StudentIDs []string `json:"studentIds"`
}

type studentsRequest struct {
	StudentIDs []string `json:"studentIds"`
}

func renderGroups(w http.ResponseWriter, code int, groups []advisory.Group) {
	if groups == nil {
		groups = []advisory.Group{}
	}
	renderJSON(w, code, groupsRequest{Groups: groups})
}

func getAdvisoryGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groups, err := backend.FromContext(ctx).AdvisorGroups(ctx, callerID(r))
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderGroups(w, http.StatusOK, groups)
}

func putAdvisoryGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req groupsRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	groups, err := backend.FromContext(ctx).SaveAdvisorGroups(ctx, callerID(r), req.Groups)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderGroups(w, http.StatusOK, groups)
}

func postAdvisoryGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	group, err := backend.FromContext(ctx).CreateAdvisorGroup(ctx, callerID(r), req.Name, req.StudentIDs)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, group)
}

func patchAdvisoryGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	group, err := backend.FromContext(ctx).RenameAdvisorGroup(ctx, callerID(r), mux.Vars(r)["gid"], req.Name)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, group)
}

func deleteAdvisoryGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := backend.FromContext(ctx).DeleteAdvisorGroup(ctx, callerID(r), mux.Vars(r)["gid"]); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func postAdvisoryStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req studentsRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	group, err := backend.FromContext(ctx).AddAdvisorStudents(ctx, callerID(r), mux.Vars(r)["gid"], req.StudentIDs)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, group)
}

func deleteAdvisoryStudents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req studentsRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	group, err := backend.FromContext(ctx).RemoveAdvisorStudents(ctx, callerID(r), mux.Vars(r)["gid"], req.StudentIDs)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, group)
}

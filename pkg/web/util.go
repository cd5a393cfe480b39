package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/search"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func renderJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding json", "err", err)
	}
}

// errorResponse is the body of every failed API request.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func renderErrorMessage(w http.ResponseWriter, code int, msg string) {
	renderJSON(w, code, errorResponse{Error: msg})
}

func renderNotFound(w http.ResponseWriter, _ *http.Request) {
	renderErrorMessage(w, http.StatusNotFound, "Not found")
}

func renderUnauthorized(w http.ResponseWriter, _ *http.Request) {
	renderErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
}

func renderForbidden(w http.ResponseWriter, _ *http.Request) {
	renderErrorMessage(w, http.StatusForbidden, "Forbidden")
}

// renderError maps err to a status code and writes it. Unexpected errors
// are logged and rendered as a generic 500; outside production the error
// text is added as details.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *proto.ValidationError
	switch {
	case errors.As(err, &verr):
		renderErrorMessage(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, proto.ErrUnauthorized),
		errors.Is(err, proto.ErrTokenExpired),
		errors.Is(err, backend.ErrInvalidToken):
		renderErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, proto.ErrForbidden):
		renderErrorMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, proto.ErrNotFound):
		renderErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, proto.ErrAlreadyExists), errors.Is(err, db.ErrDuplicateKey):
		renderErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, search.ErrDisabled):
		renderErrorMessage(w, http.StatusServiceUnavailable, err.Error())
	default:
		ctx := r.Context()
		log.FromContext(ctx).Error("internal server error", "err", err)
		resp := errorResponse{Error: "Internal server error"}
		if cfg := config.FromContext(ctx); cfg != nil && !cfg.IsProduction() {
			resp.Details = err.Error()
		}
		renderJSON(w, http.StatusInternalServerError, resp)
	}
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return proto.NewValidationError("", "invalid request body: %v", err)
	}
	return nil
}

// pathID parses the named route variable as an id.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, proto.NewValidationError(name, "invalid id")
	}
	return id, nil
}

// queryInt returns the integer query parameter name, or def when it is
// missing or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

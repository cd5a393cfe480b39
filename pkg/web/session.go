package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/proto"
)

type sessionRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// postSession exchanges an email and the bootstrap secret for a token. It
// is only available outside production.
func postSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := config.FromContext(ctx)
	if cfg.IsProduction() || cfg.Auth.Secret == "" {
		renderNotFound(w, r)
		return
	}

	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(cfg.Auth.Secret)) != 1 {
		renderUnauthorized(w, r)
		return
	}

	be := backend.FromContext(ctx)
	user, err := be.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, proto.ErrUserNotFound) {
			err = proto.ErrUnauthorized
		}
		renderError(w, r, err)
		return
	}

	expiresIn := cfg.Auth.TokenExpiry
	if expiresIn <= 0 {
		expiresIn = backend.DefaultTokenExpiry
	}
	token, err := be.GenerateToken(ctx, user, expiresIn)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, sessionResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(expiresIn),
		User:      newUserResponse(user),
	})
}

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// authenticate authenticates the user from the request. It returns a nil
// user for anonymous requests.
func authenticate(r *http.Request) (proto.User, error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return nil, errors.New("invalid authorization header")
	}

	switch strings.ToLower(parts[0]) {
	case "bearer":
		be := backend.FromContext(ctx)
		user, err := be.UserByToken(ctx, strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug("failed to authenticate", "err", err)
			return nil, err
		}
		return user, nil
	default:
		return nil, errors.New("invalid authorization header")
	}
}

// withAuth puts the authenticated user and its role in the request
// context. Requests with bad credentials are rejected.
func withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := authenticate(r)
		if err != nil {
			if !errors.Is(err, proto.ErrTokenExpired) {
				err = proto.ErrUnauthorized
			}
			renderError(w, r, err)
			return
		}

		ctx := r.Context()
		role := access.Anonymous
		if user != nil {
			ctx = proto.WithUserContext(ctx, user)
			role = user.Role()
			ctx = log.WithContext(ctx, log.FromContext(ctx).With("user", user.ID()))
		}
		ctx = access.WithContext(ctx, role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser rejects anonymous requests.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if proto.UserFromContext(r.Context()) == nil {
			renderUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireCapability rejects requests whose role does not grant c.
func requireCapability(c access.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if role := access.FromContext(ctx); !role.Can(c) {
				log.FromContext(ctx).Debug("forbidden", "role", role, "capability", c)
				renderForbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

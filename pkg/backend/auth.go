package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// ErrInvalidToken is returned when a token is malformed, has a bad
// signature or does not match its user.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenExpiry is used when the configuration sets none.
const DefaultTokenExpiry = 24 * time.Hour

// GenerateToken returns a signed session token for the user. A zero
// expiresIn uses the configured token expiry.
func (d *Backend) GenerateToken(_ context.Context, u proto.User, expiresIn time.Duration) (string, error) {
	if d.cfg.Auth.Secret == "" {
		return "", errors.New("auth secret is not configured")
	}
	if expiresIn <= 0 {
		expiresIn = d.cfg.Auth.TokenExpiry
	}
	if expiresIn <= 0 {
		expiresIn = DefaultTokenExpiry
	}

	now := d.now()
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%s#%d", u.Email(), u.ID()),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    d.cfg.HTTP.PublicURL,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(d.cfg.Auth.Secret))
}

// UserByToken validates a session token and returns its user. Expired
// tokens return proto.ErrTokenExpired.
func (d *Backend) UserByToken(ctx context.Context, bearer string) (proto.User, error) {
	if d.cfg.Auth.Secret == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(bearer, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}

		return []byte(d.cfg.Auth.Secret), nil
	},
		jwt.WithIssuer(d.cfg.HTTP.PublicURL),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(d.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, proto.ErrTokenExpired
		}
		d.logger.Debug("failed to parse jwt", "err", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !token.Valid || !ok {
		return nil, ErrInvalidToken
	}

	idx := strings.LastIndex(claims.Subject, "#")
	if idx < 0 {
		d.logger.Error("invalid jwt subject", "subject", claims.Subject)
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject[idx+1:], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := d.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	expectedSubject := fmt.Sprintf("%s#%d", u.Email(), u.ID())
	if expectedSubject != claims.Subject {
		d.logger.Error("invalid jwt subject", "subject", claims.Subject, "expected", expectedSubject)
		return nil, ErrInvalidToken
	}

	return u, nil
}

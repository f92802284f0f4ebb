package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oggyb/glidefade/internal/logger"
	"github.com/oggyb/glidefade/internal/metrics"
)

var (
	ErrNoSubject      = errors.New("no subject")
	ErrIssuerMismatch = errors.New("issuer mismatch")
)

// Validator turns a raw bearer token into the caller's subject id.
type Validator interface {
	Method() string
	Subject(raw string) (string, error)
}

// HMACValidator accepts HS256 tokens signed with a shared secret.
type HMACValidator struct {
	secret []byte
	issuer string
}

func NewHMACValidator(secret, issuer string) *HMACValidator {
	return &HMACValidator{secret: []byte(secret), issuer: issuer}
}

func (h *HMACValidator) Method() string { return "hmac" }

func (h *HMACValidator) Subject(raw string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return h.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	sub, _ := token.Claims.GetSubject()
	if sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

// JWKSValidator accepts tokens signed by an OIDC provider (Cognito) whose
// keys are published as a JWKS document.
type JWKSValidator struct {
	jwks   *keyfunc.JWKS
	issuer string
}

func NewJWKSValidator(ctx context.Context, jwksURL, issuer string) (*JWKSValidator, error) {
	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Minute * 15,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", "url", jwksURL, "err", err)
		},
	}
	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks from %s: %w", jwksURL, err)
	}
	return &JWKSValidator{jwks: jwks, issuer: issuer}, nil
}

func (j *JWKSValidator) Method() string { return "jwks" }

func (j *JWKSValidator) Subject(raw string) (string, error) {
	token, err := jwtv4.Parse(raw, j.jwks.Keyfunc)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwtv4.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	if j.issuer != "" && !claims.VerifyIssuer(j.issuer, true) {
		return "", ErrIssuerMismatch
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrNoSubject
	}
	return sub, nil
}

// Close stops the background JWKS refresh.
func (j *JWKSValidator) Close() {
	j.jwks.EndBackground()
}

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID stores the authenticated subject in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the authenticated subject. Empty outside Auth.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// Auth rejects requests without a valid bearer token and stores the
// token subject for handlers.
func Auth(v Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContext(r.Context(), nil)

			header := r.Header.Get("Authorization")
			if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
				metrics.AuthenticationAttemptsTotal.WithLabelValues(v.Method(), "failure").Inc()
				unauthorized(w, "missing bearer token")
				return
			}

			sub, err := v.Subject(strings.TrimSpace(header[len("Bearer "):]))
			if err != nil {
				metrics.AuthenticationAttemptsTotal.WithLabelValues(v.Method(), "failure").Inc()
				log.Warn("auth rejected", "method", v.Method(), "err", err)
				unauthorized(w, "invalid token")
				return
			}

			metrics.AuthenticationAttemptsTotal.WithLabelValues(v.Method(), "success").Inc()
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sub)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/app"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/repository"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Claims is what an entitlement token asserts about its subject.
// SwipeLimit <= 0 means unlimited.
type Claims struct {
	Plan       string `json:"plan"`
	SwipeLimit int    `json:"swipe_limit"`
	jwt.RegisteredClaims
}

// Unlimited reports whether the holder may swipe without a daily cap.
func (c *Claims) Unlimited() bool {
	return c.SwipeLimit <= 0
}

// Token is the issued entitlement as returned to clients.
type Token struct {
	Token      string    `json:"token"`
	Plan       string    `json:"plan"`
	SwipeLimit int       `json:"swipe_limit"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Service signs and verifies entitlement tokens. Plan data lives on the
// server (profiles.premium); clients only ever hold the signed result.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	secret   []byte
	now      func() time.Time
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
		secret:   []byte(appCtx.Config.Entitlement.Secret),
		now:      time.Now,
	}
}

// FreeTier is the entitlement assumed when a request carries none.
func (s *Service) FreeTier(userID string) *Claims {
	return &Claims{
		Plan:             PlanFree,
		SwipeLimit:       s.appCtx.Config.Swipe.DailyLimit,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
}

// Issue signs a fresh entitlement for userID based on the stored plan.
// Users without a profile get the free tier.
func (s *Service) Issue(ctx context.Context, userID string) (*Token, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("userId is required")
	}

	claims := s.FreeTier(userID)
	profile, err := s.profiles.Get(ctx, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, svcErr.Map(err)
	case profile.Premium:
		claims.Plan = PlanPremium
		claims.SwipeLimit = 0
	}

	now := s.now().UTC()
	exp := now.Add(s.appCtx.Config.Entitlement.TTL)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, svcErr.Internal("failed to sign entitlement", err)
	}

	s.appCtx.Logger.Debug("entitlement issued", "user", userID, "plan", claims.Plan)
	return &Token{
		Token:      signed,
		Plan:       claims.Plan,
		SwipeLimit: claims.SwipeLimit,
		ExpiresAt:  exp.Truncate(time.Second),
	}, nil
}

// Verify checks signature and expiry and that the token belongs to userID.
func (s *Service) Verify(raw, userID string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", token.Method)
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, svcErr.Unauthorized("invalid entitlement")
	}
	if claims.Subject != userID {
		return nil, svcErr.Unauthorized("entitlement belongs to another user")
	}
	return claims, nil
}

// Resolve returns the verified entitlement in raw, or the free tier when
// raw is empty or does not verify.
func (s *Service) Resolve(raw, userID string) *Claims {
	if raw == "" {
		return s.FreeTier(userID)
	}
	claims, err := s.Verify(raw, userID)
	if err != nil {
		s.appCtx.Logger.Debug("ignoring entitlement", "user", userID, "err", err)
		return s.FreeTier(userID)
	}
	return claims
}

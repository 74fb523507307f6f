package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/bookauth/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Hydrate restores the session from durable storage without a server round
// trip. Both slots present yields Authenticated; anything else yields
// Anonymous, and inconsistent or unusable leftovers are erased so the two
// slots stay in step. Only a storage read failure is returned as an error,
// in which case the store moves to the Error state.
func (s *Store) Hydrate(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	c, err := s.creds.Load(ctx)
	if err != nil {
		s.apply(ctx, models.Failed("durable storage unavailable"))
		return oops.Code("SESSION_HYDRATE_FAILED").Wrap(err)
	}

	if c.Empty() {
		s.apply(ctx, models.Anonymous())
		return nil
	}

	if !c.Complete() {
		s.log.Warn(ctx, "discarding incomplete stored session", "has_token", c.Token != "", "has_user", len(c.User) > 0)
		s.discard(ctx)
		return nil
	}

	var user models.User
	if err := json.Unmarshal(c.User, &user); err != nil {
		s.log.Warn(ctx, "discarding undecodable stored user", "error", err)
		s.discard(ctx)
		return nil
	}

	if tokenExpired(c.Token, s.now()) {
		s.log.Info(ctx, "stored token already expired, starting anonymous")
		s.discard(ctx)
		return nil
	}

	s.apply(ctx, models.Authenticated(user, c.Token))
	s.log.Info(ctx, "session hydrated", "user_id", user.ID)
	return nil
}

func (s *Store) discard(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear stored session", "error", err)
	}
	s.apply(ctx, models.Anonymous())
}

// tokenExpired peeks at the exp claim when the token happens to be a JWT.
// The signature is not checked; the server remains the authority. Opaque
// tokens and JWTs without exp are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

package session

import (
	"context"
	"time"

	"ayurbook/database/repository/localstore"
	"ayurbook/models"
	"ayurbook/utils"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// tokenExpiry reads the exp claim without verifying the signature; the
// server is the authority on validity. Opaque tokens and tokens without
// exp yield the zero time, meaning "no known expiry".
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	raw, ok := claims["exp"]
	if !ok {
		return time.Time{}
	}
	exp, err := cast.ToInt64E(raw)
	if err != nil || exp <= 0 {
		return time.Time{}
	}
	return time.Unix(exp, 0)
}

// Token returns the current credential, or "" when signed out or expired.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.Expired(s.Now()) {
		return ""
	}
	return s.session.Token
}

// HandleUnauthorized drops the session after the server rejected it.
func (s *Store) HandleUnauthorized() {
	s.Logger.Info("[Session] credential rejected, clearing session")
	s.clear(context.Background())
}

func (s *Store) setSession(ctx context.Context, token string, user models.User) error {
	sess := &models.Session{Token: token, User: user, Expiry: tokenExpiry(token)}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	if s.Local != nil {
		if err := s.Local.Set(ctx, utils.AuthTokenKey, token); err != nil {
			s.Logger.Warn("[Session] failed to persist token", zap.Error(err))
			return errors.Wrap(err, "persist token")
		}
	}
	s.Events.Publish(utils.TopicSession, true)
	return nil
}

func (s *Store) clear(ctx context.Context) {
	s.mu.Lock()
	had := s.session != nil
	s.session = nil
	s.mu.Unlock()

	if s.Local != nil {
		if err := s.Local.Delete(ctx, utils.AuthTokenKey); err != nil {
			s.Logger.Warn("[Session] failed to remove persisted token", zap.Error(err))
		}
	}
	if had {
		s.Events.Publish(utils.TopicSession, false)
	}
}

// Restore loads a persisted credential and the display currency, then
// re-fetches the identity. An expired or rejected credential leaves the
// store signed out without an error.
func (s *Store) Restore(ctx context.Context) error {
	if s.Local == nil {
		return nil
	}
	if err := s.restoreCurrency(ctx); err != nil {
		return err
	}

	token, err := s.Local.Get(ctx, utils.AuthTokenKey)
	if errors.Is(err, localstore.ErrNotFound) || token == "" {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load persisted token")
	}

	exp := tokenExpiry(token)
	if !exp.IsZero() && !s.Now().Before(exp) {
		s.Logger.Info("[Session] persisted token expired", zap.Time("expiry", exp))
		s.clear(ctx)
		return nil
	}

	s.mu.Lock()
	s.session = &models.Session{Token: token, Expiry: exp}
	s.mu.Unlock()

	if _, err := s.Me(ctx); err != nil {
		if !s.IsAuthenticated() {
			return nil
		}
		return err
	}
	return nil
}

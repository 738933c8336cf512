package session

import (
	"context"
	"strings"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func requireEmail(fields map[string]string, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		fields["email"] = "is required"
	} else if !utils.ValidEmail(email) {
		fields["email"] = "must be a valid email"
	}
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "is required"
	}
	requireEmail(fields, req.Email)
	if req.Password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return nil, gateway.NewValidationError(fields)
	}

	var resp models.AuthResponse
	if err := s.Client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := s.setSession(ctx, resp.Token, resp.User); err != nil {
		return nil, err
	}
	s.Logger.Info("[Session] registered", zap.String("userID", resp.User.ID))
	return &resp.User, nil
}

// Login exchanges credentials for a session.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	fields := map[string]string{}
	requireEmail(fields, email)
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return nil, gateway.NewValidationError(fields)
	}

	var resp models.AuthResponse
	if err := s.Client.Post(ctx, "/auth/login", models.LoginRequest{Email: strings.TrimSpace(email), Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &gateway.APIError{Kind: gateway.KindDecode, Method: "POST", Path: "/auth/login", Message: "missing token"}
	}
	if err := s.setSession(ctx, resp.Token, resp.User); err != nil {
		return nil, err
	}
	s.Logger.Info("[Session] signed in", zap.String("userID", resp.User.ID), zap.String("role", string(resp.User.Role)))
	return &resp.User, nil
}

// Logout ends the session locally even when the server call fails.
func (s *Store) Logout(ctx context.Context) error {
	var err error
	if s.IsAuthenticated() {
		err = s.Client.Post(ctx, "/auth/logout", nil, nil)
		if err != nil && !gateway.IsKind(err, gateway.KindUnauthorized) {
			s.Logger.Warn("[Session] logout request failed", zap.Error(err))
		} else {
			err = nil
		}
	}
	s.clear(ctx)
	return err
}

func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	fields := map[string]string{}
	requireEmail(fields, email)
	if len(fields) > 0 {
		return gateway.NewValidationError(fields)
	}
	return s.Client.Post(ctx, "/auth/forgot-password", map[string]string{"email": strings.TrimSpace(email)}, nil)
}

func (s *Store) ResetPassword(ctx context.Context, token, password string) error {
	fields := map[string]string{}
	if token == "" {
		fields["token"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return gateway.NewValidationError(fields)
	}
	return s.Client.Post(ctx, "/auth/reset-password", models.ResetPasswordRequest{Token: token, Password: password}, nil)
}

// Me refreshes the signed-in user from the server.
func (s *Store) Me(ctx context.Context) (*models.User, error) {
	if !s.IsAuthenticated() {
		return nil, &gateway.APIError{Kind: gateway.KindUnauthorized, Message: "not signed in"}
	}
	var user models.User
	if err := s.Client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, errors.Wrap(err, "fetch profile")
	}
	s.replaceUser(user)
	return &user, nil
}

// UpdateProfile sends the changed fields and keeps the returned user.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	if !s.IsAuthenticated() {
		return nil, &gateway.APIError{Kind: gateway.KindUnauthorized, Message: "not signed in"}
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, gateway.NewValidationError(map[string]string{"name": "cannot be empty"})
	}
	var user models.User
	if err := s.Client.Put(ctx, "/auth/profile", update, &user); err != nil {
		return nil, err
	}
	s.replaceUser(user)
	return &user, nil
}

func (s *Store) replaceUser(user models.User) {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.session.User = user
	s.mu.Unlock()
	s.Events.Publish(utils.TopicSession, true)
}

// Current returns a copy of the session.
func (s *Store) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil || s.session.Expired(s.Now()) {
		return models.Session{}, false
	}
	return *s.session, true
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Store) IsAdmin() bool {
	sess, ok := s.Current()
	return ok && sess.User.IsAdmin()
}

// ProfileComplete reports whether the signed-in user has the contact details
// required to book.
func (s *Store) ProfileComplete() bool {
	sess, ok := s.Current()
	return ok && sess.User.ProfileComplete()
}

func (s *Store) Role() models.Role {
	sess, ok := s.Current()
	if !ok {
		return ""
	}
	return sess.User.Role
}

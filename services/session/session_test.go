package session_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ayurbook/database/repository/localstore"
	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/services/gateway/gatewaytest"
	"ayurbook/services/session"
	"ayurbook/utils"

	"github.com/golang-jwt/jwt"
)

func newStore(t *testing.T) (*session.Store, *gatewaytest.Server, *localstore.MemoryStore) {
	t.Helper()
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)

	client := gateway.NewClient(srv.URL, 5*time.Second, 0, nil)
	local := localstore.NewMemoryStore()
	store := session.NewStore(client, local, utils.NewEvents(nil), nil, models.CurrencyINR)
	client.Credentials = store
	client.OnUnauthorized = store
	return store, srv, local
}

func TestLoginPersistsTokenAndExpiry(t *testing.T) {
	store, srv, local := newStore(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com", Phone: "+91 98470 00000"}, "secret1")

	user, err := store.Login(context.Background(), "meera@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Name != "Meera" || !store.IsAuthenticated() {
		t.Fatalf("unexpected state after login: %+v", user)
	}
	persisted, err := local.Get(context.Background(), utils.AuthTokenKey)
	if err != nil || persisted != store.Token() {
		t.Fatalf("token not persisted: %q, %v", persisted, err)
	}
	sess, _ := store.Current()
	if sess.Expiry.IsZero() || sess.Expiry.Before(time.Now()) {
		t.Fatalf("expected future expiry from exp claim, got %v", sess.Expiry)
	}
	if !store.ProfileComplete() {
		t.Fatal("profile with name, email and phone should be complete")
	}
}

func TestLoginValidatesLocally(t *testing.T) {
	store, srv, _ := newStore(t)

	_, err := store.Login(context.Background(), "not-an-email", "")
	fields := gateway.FieldErrors(err)
	if fields["email"] == "" || fields["password"] == "" {
		t.Fatalf("expected email and password messages, got %v", fields)
	}
	if srv.Count(http.MethodPost, "/auth/login") != 0 {
		t.Fatal("invalid input must not reach the server")
	}
}

func TestMalformedEmailsAreRejectedBeforeSending(t *testing.T) {
	store, srv, _ := newStore(t)
	ctx := context.Background()

	for _, email := range []string{"@", "meera@", "@example.com", "Meera <meera@example.com>"} {
		if _, err := store.Login(ctx, email, "secret1"); gateway.FieldErrors(err)["email"] == "" {
			t.Fatalf("login with %q: expected an email message, got %v", email, err)
		}
		if err := store.ForgotPassword(ctx, email); gateway.FieldErrors(err)["email"] == "" {
			t.Fatalf("forgot password with %q: expected an email message, got %v", email, err)
		}
	}
	if srv.Count(http.MethodPost, "/auth/login") != 0 || srv.Count(http.MethodPost, "/auth/forgot-password") != 0 {
		t.Fatal("malformed addresses must not reach the server")
	}
}

func TestRegisterSignsIn(t *testing.T) {
	store, _, _ := newStore(t)

	user, err := store.Register(context.Background(), models.RegisterRequest{
		Name: "Arjun", Email: "arjun@example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if store.Role() != models.RoleCustomer || user.ID == "" {
		t.Fatalf("unexpected user %+v", user)
	}
	if store.ProfileComplete() {
		t.Fatal("profile without phone must be incomplete")
	}

	phone := "+91 98470 11111"
	if _, err := store.UpdateProfile(context.Background(), models.ProfileUpdate{Phone: &phone}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if !store.ProfileComplete() {
		t.Fatal("profile should be complete after adding phone")
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	store, srv, local := newStore(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com"}, "secret1")
	if _, err := store.Login(context.Background(), "meera@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	srv.RevokeAll()
	_, err := store.Me(context.Background())
	if !gateway.IsKind(err, gateway.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if store.IsAuthenticated() || store.Token() != "" {
		t.Fatal("session should be cleared after a 401")
	}
	if _, err := local.Get(context.Background(), utils.AuthTokenKey); err != localstore.ErrNotFound {
		t.Fatalf("persisted token should be removed, got %v", err)
	}
}

func TestRestoreUsesPersistedToken(t *testing.T) {
	store, srv, local := newStore(t)
	srv.AddUser(models.User{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}, "secret1")
	token := srv.IssueToken("admin@example.com", time.Hour)
	ctx := context.Background()
	_ = local.Set(ctx, utils.AuthTokenKey, token)
	_ = local.Set(ctx, utils.CurrencyKey, "EUR")

	if err := store.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !store.IsAdmin() {
		t.Fatal("restored session should carry the admin role")
	}
	if store.Currency() != models.CurrencyEUR {
		t.Fatalf("expected EUR, got %s", store.Currency())
	}
}

func TestRestoreDropsExpiredToken(t *testing.T) {
	store, srv, local := newStore(t)
	ctx := context.Background()
	claims := jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	_ = local.Set(ctx, utils.AuthTokenKey, expired)

	if err := store.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("expired token must not restore a session")
	}
	if srv.Count(http.MethodGet, "/auth/me") != 0 {
		t.Fatal("expired token must not be sent")
	}
	if _, err := local.Get(ctx, utils.AuthTokenKey); err != localstore.ErrNotFound {
		t.Fatal("expired token should be removed from storage")
	}
}

func TestTokenExpiresWithClock(t *testing.T) {
	store, srv, _ := newStore(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com"}, "secret1")
	if _, err := store.Login(context.Background(), "meera@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	store.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if store.Token() != "" {
		t.Fatal("token past its exp claim must not be offered")
	}
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	store, srv, _ := newStore(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com"}, "secret1")
	if _, err := store.Login(context.Background(), "meera@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}

	events := utils.NewEvents(nil)
	var states []bool
	_ = events.Subscribe(utils.TopicSession, func(authenticated bool) { states = append(states, authenticated) })
	store.Events = events

	srv.FailNext(http.MethodPost, "/auth/logout", http.StatusInternalServerError, nil)
	err := store.Logout(context.Background())
	if !gateway.IsKind(err, gateway.KindServer) {
		t.Fatalf("expected server error to be surfaced, got %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatal("logout must clear the local session")
	}
	if len(states) != 1 || states[0] {
		t.Fatalf("expected a single signed-out event, got %v", states)
	}
}

func TestSetCurrencyRejectsUnsupported(t *testing.T) {
	store, _, local := newStore(t)
	ctx := context.Background()

	if err := store.SetCurrency(ctx, "GBP"); err == nil {
		t.Fatal("GBP is not a display currency")
	}
	if err := store.SetCurrency(ctx, "usd"); err != nil {
		t.Fatalf("set usd: %v", err)
	}
	if store.Currency() != models.CurrencyUSD {
		t.Fatalf("expected USD, got %s", store.Currency())
	}
	if v, _ := local.Get(ctx, utils.CurrencyKey); v != "USD" {
		t.Fatalf("expected persisted USD, got %q", v)
	}
}

func TestPasswordReset(t *testing.T) {
	store, srv, _ := newStore(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com"}, "secret1")
	ctx := context.Background()

	if err := store.ForgotPassword(ctx, "meera@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if err := store.ResetPassword(ctx, gatewaytest.ResetToken("meera@example.com"), "newsecret"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := store.Login(ctx, "meera@example.com", "newsecret"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := store.ResetPassword(ctx, "bogus", "newsecret"); !gateway.IsKind(err, gateway.KindBadRequest) {
		t.Fatalf("expected bad request for unknown token, got %v", err)
	}
}

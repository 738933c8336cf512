package gateway_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/services/gateway/gatewaytest"
	"ayurbook/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type tokenSource struct {
	mu    sync.Mutex
	token string
}

func (s *tokenSource) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *tokenSource) set(t string) {
	s.mu.Lock()
	s.token = t
	s.mu.Unlock()
}

type cleared struct {
	mu sync.Mutex
	n  int
}

func (c *cleared) HandleUnauthorized() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

type router struct {
	mu        sync.Mutex
	view      string
	redirects int
}

func (r *router) CurrentView() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *router) Redirect(view string) {
	r.mu.Lock()
	r.view = view
	r.redirects++
	r.mu.Unlock()
}

func newClient(t *testing.T) (*gateway.Client, *gatewaytest.Server) {
	t.Helper()
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	return gateway.NewClient(srv.URL, 5*time.Second, 0, nil), srv
}

func TestBearerTokenIsReadOnEveryCall(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com"}, "secret1")
	first := srv.IssueToken("meera@example.com", time.Hour)
	second := srv.IssueToken("meera@example.com", time.Hour)

	creds := &tokenSource{token: first}
	client.Credentials = creds

	var me models.User
	if err := client.Get(context.Background(), "/auth/me", nil, &me); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if srv.LastAuth != "Bearer "+first {
		t.Fatalf("expected first token, got %q", srv.LastAuth)
	}

	creds.set(second)
	if err := client.Get(context.Background(), "/auth/me", nil, &me); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if srv.LastAuth != "Bearer "+second {
		t.Fatalf("expected rotated token, got %q", srv.LastAuth)
	}
	if me.Email != "meera@example.com" {
		t.Fatalf("unexpected user %+v", me)
	}
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	client, srv := newClient(t)
	client.Credentials = &tokenSource{}

	if _, err := gateway.GetList[models.Treatment](context.Background(), client, "/treatments", nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if srv.LastAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", srv.LastAuth)
	}
}

func TestUnauthorizedClearsSessionAndRedirectsOnce(t *testing.T) {
	client, _ := newClient(t)
	client.Credentials = &tokenSource{token: "expired"}
	session := &cleared{}
	nav := &router{view: "booking"}
	client.OnUnauthorized = session
	client.Navigator = nav
	client.AuthView = "login"

	events := utils.NewEvents(nil)
	signalled := 0
	var mu sync.Mutex
	if err := events.Subscribe(utils.TopicUnauthorized, func() {
		mu.Lock()
		signalled++
		mu.Unlock()
	}); err != nil {
		t.Fatal(err)
	}
	client.Events = events

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := client.Get(context.Background(), "/auth/me", nil, nil)
			if !gateway.IsKind(err, gateway.KindUnauthorized) {
				t.Errorf("expected unauthorized, got %v", err)
			}
		}()
	}
	wg.Wait()

	if nav.redirects != 1 {
		t.Fatalf("expected exactly one redirect, got %d", nav.redirects)
	}
	if nav.view != "login" {
		t.Fatalf("expected auth view, got %q", nav.view)
	}
	if session.n != 5 {
		t.Fatalf("expected session cleared on each 401, got %d", session.n)
	}
	if signalled != 5 {
		t.Fatalf("expected 5 re-auth signals, got %d", signalled)
	}
}

func TestUnauthorizedOnAuthViewDoesNotRedirect(t *testing.T) {
	client, _ := newClient(t)
	nav := &router{view: "login"}
	client.Navigator = nav

	err := client.Post(context.Background(), "/auth/login", models.LoginRequest{Email: "nobody@example.com", Password: "x"}, nil)
	if !gateway.IsKind(err, gateway.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if nav.redirects != 0 {
		t.Fatalf("expected no redirect from the auth view, got %d", nav.redirects)
	}
}

func TestValidationErrorsSurfaceEachField(t *testing.T) {
	client, _ := newClient(t)

	err := client.Post(context.Background(), "/content/contact", models.ContactMessage{Email: "not-an-email"}, nil)
	if !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := gateway.FieldErrors(err)
	for _, name := range []string{"name", "email", "message"} {
		if fields[name] == "" {
			t.Errorf("missing field message for %q in %v", name, fields)
		}
	}
}

func TestValidationErrorListsAreJoined(t *testing.T) {
	client, srv := newClient(t)
	srv.FailNext(http.MethodPost, "/content/newsletter/subscribe", http.StatusUnprocessableEntity, gin.H{
		"message": "Validation failed",
		"errors":  gin.H{"email": []string{"is required", "must be a valid email"}},
	})

	err := client.Post(context.Background(), "/content/newsletter/subscribe", models.NewsletterSubscription{}, nil)
	got := gateway.FieldErrors(err)["email"]
	if got != "is required; must be a valid email" {
		t.Fatalf("unexpected joined message %q", got)
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   gateway.Kind
	}{
		{http.StatusBadRequest, gateway.KindBadRequest},
		{http.StatusForbidden, gateway.KindForbidden},
		{http.StatusNotFound, gateway.KindNotFound},
		{http.StatusConflict, gateway.KindBadRequest},
		{http.StatusTooManyRequests, gateway.KindRateLimited},
		{http.StatusInternalServerError, gateway.KindServer},
		{http.StatusServiceUnavailable, gateway.KindServer},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client, srv := newClient(t)
			srv.FailNext(http.MethodGet, "/packages", tc.status, gin.H{"message": "boom"})

			_, err := gateway.GetList[models.Package](context.Background(), client, "/packages", nil)
			if got := gateway.KindOf(err); got != tc.kind {
				t.Fatalf("status %d: expected %s, got %s (%v)", tc.status, tc.kind, got, err)
			}
			if srv.Count(http.MethodGet, "/packages") != 1 {
				t.Fatalf("expected a single attempt, got %d", srv.Count(http.MethodGet, "/packages"))
			}
		})
	}
}

func TestNetworkFailureIsClassified(t *testing.T) {
	client, srv := newClient(t)
	srv.Close()

	err := client.Get(context.Background(), "/treatments", nil, nil)
	if !gateway.IsKind(err, gateway.KindNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestDecodesEnvelopeAndBareDocuments(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	var treatment models.Treatment
	if err := client.Get(ctx, "/treatments/"+gatewaytest.Abhyanga, nil, &treatment); err != nil {
		t.Fatalf("treatment: %v", err)
	}
	if treatment.Name != "Abhyanga" || treatment.Prices[models.CurrencyUSD] != 45 {
		t.Fatalf("unexpected treatment %+v", treatment)
	}

	var pkg models.Package
	if err := client.Get(ctx, "/packages/panchakarma-kochi", nil, &pkg); err != nil {
		t.Fatalf("package: %v", err)
	}
	if pkg.City != "Kochi" {
		t.Fatalf("unexpected package %+v", pkg)
	}
}

func TestGetListAcceptsEveryListShape(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	treatments, err := gateway.GetList[models.Treatment](ctx, client, "/treatments", nil)
	if err != nil || len(treatments) != 4 {
		t.Fatalf("array list: %d items, %v", len(treatments), err)
	}
	packages, err := gateway.GetList[models.Package](ctx, client, "/packages", nil)
	if err != nil || len(packages) != 2 {
		t.Fatalf("items list: %d items, %v", len(packages), err)
	}
	testimonials, err := gateway.GetList[models.Testimonial](ctx, client, "/content/testimonials", nil)
	if err != nil || len(testimonials) != 3 {
		t.Fatalf("enveloped list: %d items, %v", len(testimonials), err)
	}
}

func TestNotFoundCarriesUserMessage(t *testing.T) {
	client, _ := newClient(t)

	err := client.Get(context.Background(), "/treatments/missing", nil, nil)
	apiErr, ok := err.(*gateway.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Kind != gateway.KindNotFound || apiErr.UserMessage() == "" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Retryable() {
		t.Fatal("not found must not be retryable")
	}
}

func TestServerRateLimitIsSurfacedOnce(t *testing.T) {
	client, srv := newClient(t)
	srv.SetRateLimit(1, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := client.Get(ctx, "/content/faq", nil, nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	err := client.Get(ctx, "/content/faq", nil, nil)
	if !gateway.IsKind(err, gateway.KindRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if apiErr := err.(*gateway.APIError); !apiErr.Retryable() {
		t.Fatal("rate limited should be retryable by the user")
	}
}

func TestClientThrottleGivesUpWithContext(t *testing.T) {
	client, srv := newClient(t)
	client.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	if err := client.Get(context.Background(), "/treatments", nil, nil); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := client.Get(ctx, "/treatments", nil, nil); err == nil {
		t.Fatal("throttled call should fail once the context cannot wait")
	}
	if got := srv.Count(http.MethodGet, "/treatments"); got != 1 {
		t.Fatalf("throttled call must not reach the server, got %d requests", got)
	}
}

package catalog_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"ayurbook/models"
	"ayurbook/services/catalog"
	"ayurbook/services/gateway"
	"ayurbook/services/gateway/gatewaytest"
	"ayurbook/utils"
)

func setup(t *testing.T) (*gateway.Client, *gatewaytest.Server) {
	t.Helper()
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	return gateway.NewClient(srv.URL, 5*time.Second, 0, nil), srv
}

func names[T any](items []T, name func(T) string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return fmt.Sprint(out)
}

func treatmentName(t models.Treatment) string { return t.Name }

func TestTreatmentSearchUsesSearchEndpoint(t *testing.T) {
	client, srv := setup(t)
	store := catalog.NewTreatmentStore(client, 9, time.Minute, nil, nil)

	page, err := store.Search(context.Background(), "massage")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := names(page.Items, treatmentName); got != "[Abhyanga Udvartana]" {
		t.Fatalf("unexpected search results %s", got)
	}
	if srv.Count(http.MethodGet, "/treatments/search") != 1 || srv.Count(http.MethodGet, "/treatments") != 0 {
		t.Fatal("search should be served by the search endpoint only")
	}

	if _, err := store.Search(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if srv.Count(http.MethodGet, "/treatments") != 1 {
		t.Fatal("clearing the search should go back to the list endpoint")
	}
}

func TestTreatmentFilterAndSort(t *testing.T) {
	client, _ := setup(t)
	events := utils.NewEvents(nil)
	changes := 0
	_ = events.Subscribe(utils.TopicTreatments, func() { changes++ })
	store := catalog.NewTreatmentStore(client, 9, time.Minute, events, nil)
	ctx := context.Background()

	if _, err := store.SetFilter(ctx, models.Criteria{Category: "therapy", Status: "active"}); err != nil {
		t.Fatal(err)
	}
	page := store.SetSort(models.Sort{Field: "price", Order: models.SortAsc})
	if got := names(page.Items, treatmentName); got != "[Nasya Shirodhara]" {
		t.Fatalf("unexpected filtered page %s", got)
	}
	if changes != 2 {
		t.Fatalf("expected a change event per state change, got %d", changes)
	}

	page, err := store.SetFilter(ctx, models.Criteria{MinRating: 4.5, MaxDuration: 60})
	if err != nil {
		t.Fatal(err)
	}
	if got := names(page.Items, treatmentName); got != "[Udvartana Abhyanga Shirodhara]" {
		t.Fatalf("unexpected page %s", got)
	}
}

func TestTreatmentDetailIsCached(t *testing.T) {
	client, srv := setup(t)
	store := catalog.NewTreatmentStore(client, 9, time.Minute, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tr, err := store.Get(ctx, gatewaytest.Abhyanga)
		if err != nil {
			t.Fatal(err)
		}
		if tr.Prices[models.CurrencyUSD] != 45 {
			t.Fatalf("unexpected detail %+v", tr)
		}
	}
	if n := srv.Count(http.MethodGet, "/treatments/:id"); n != 1 {
		t.Fatalf("expected one detail request, got %d", n)
	}
	if _, err := store.RefreshDetail(ctx, gatewaytest.Abhyanga); err != nil {
		t.Fatal(err)
	}
	if n := srv.Count(http.MethodGet, "/treatments/:id"); n != 2 {
		t.Fatalf("refresh should refetch, got %d requests", n)
	}

	_, err := store.Get(ctx, "missing")
	if !gateway.IsKind(err, gateway.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTreatmentRating(t *testing.T) {
	client, srv := setup(t)
	srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com"}, "secret1")
	client.Credentials = staticToken(srv.IssueToken("meera@example.com", time.Hour))
	store := catalog.NewTreatmentStore(client, 9, time.Minute, nil, nil)
	ctx := context.Background()

	if _, err := store.Rate(ctx, "nasya", 6, ""); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("expected local validation error, got %v", err)
	}
	if srv.Count(http.MethodPost, "/treatments/:id/rate") != 0 {
		t.Fatal("invalid rating must not be sent")
	}

	if _, err := store.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	rated, err := store.Rate(ctx, "nasya", 5, "Cleared my sinuses")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.ReviewCount != 15 {
		t.Fatalf("expected review count 15, got %d", rated.ReviewCount)
	}
	for _, tr := range store.View().Items {
		if tr.ID == "nasya" && tr.ReviewCount != 15 {
			t.Fatal("list entry should be replaced by the rated treatment")
		}
	}
	cached, _ := store.Get(ctx, "nasya")
	if cached.ReviewCount != 15 || srv.Count(http.MethodGet, "/treatments/:id") != 0 {
		t.Fatal("rated treatment should be served from the detail cache")
	}
}

func TestTreatmentCategories(t *testing.T) {
	client, _ := setup(t)
	store := catalog.NewTreatmentStore(client, 9, time.Minute, nil, nil)

	cats, err := store.Categories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].ID != "massage" || cats[0].Count != 2 {
		t.Fatalf("unexpected categories %+v", cats)
	}
}

func TestPackageCatalog(t *testing.T) {
	client, srv := setup(t)
	store := catalog.NewPackageStore(client, 9, time.Minute, nil, nil)
	ctx := context.Background()

	page, err := store.SetFilter(ctx, models.Criteria{City: "kochi"})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "panchakarma-kochi" {
		t.Fatalf("unexpected packages %+v", page.Items)
	}

	pricing, err := store.Pricing(ctx, "panchakarma-kochi", models.CurrencyUSD)
	if err != nil {
		t.Fatalf("pricing: %v", err)
	}
	if pricing.BasePrice != 1180 || pricing.Total != 1239 {
		t.Fatalf("unexpected pricing %+v", pricing)
	}
	if _, err := store.Pricing(ctx, "panchakarma-kochi", models.CurrencyEUR); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("expected server validation error for unlisted currency, got %v", err)
	}
	if _, err := store.Pricing(ctx, "panchakarma-kochi", "GBP"); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("expected local validation error, got %v", err)
	}
	if n := srv.Count(http.MethodGet, "/packages/:id/pricing"); n != 2 {
		t.Fatalf("unsupported currency must not be sent, got %d requests", n)
	}

	avail, err := store.Availability(ctx, "panchakarma-kochi", "2024-06")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(avail.StartDates) != 4 || avail.StartDates[0] != "2024-06-01" {
		t.Fatalf("unexpected availability %+v", avail)
	}
	if _, err := store.Availability(ctx, "panchakarma-kochi", "June"); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("expected validation error for bad month, got %v", err)
	}

	pkg, err := store.Get(ctx, "rejuvenation-goa")
	if err != nil || pkg.City != "Goa" {
		t.Fatalf("get: %+v, %v", pkg, err)
	}
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

package booking_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"ayurbook/models"
	"ayurbook/services/booking"
	"ayurbook/services/catalog"
	"ayurbook/services/gateway"
	"ayurbook/services/gateway/gatewaytest"
	"ayurbook/utils"
)

var clock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type role struct{ admin bool }

func (r *role) IsAdmin() bool { return r.admin }

type fixture struct {
	w      *booking.Workflow
	srv    *gatewaytest.Server
	user   models.User
	role   *role
	events *utils.Events
}

func newFixture(t *testing.T, autoConfirm bool) *fixture {
	t.Helper()
	srv := gatewaytest.New()
	t.Cleanup(srv.Close)
	user := srv.AddUser(models.User{Name: "Meera", Email: "meera@example.com", Phone: "+91 98470 00000"}, "secret1")

	client := gateway.NewClient(srv.URL, 5*time.Second, 0, nil)
	client.Credentials = staticToken(srv.IssueToken(user.Email, time.Hour))

	r := &role{}
	events := utils.NewEvents(nil)
	w := booking.NewWorkflow(booking.Options{
		Client:          client,
		Treatments:      catalog.NewTreatmentStore(client, 9, time.Minute, nil, nil),
		Packages:        catalog.NewPackageStore(client, 9, time.Minute, nil, nil),
		Authorizer:      r,
		Rates:           utils.RateTable{models.CurrencyINR: 1, models.CurrencyUSD: 0.012, models.CurrencyEUR: 0.011},
		DefaultCurrency: models.CurrencyINR,
		AutoConfirm:     autoConfirm,
		Events:          events,
	})
	w.Now = func() time.Time { return clock }
	w.Location = time.UTC
	return &fixture{w: w, srv: srv, user: user, role: r, events: events}
}

func (f *fixture) seed(id string, status models.BookingStatus, date string) {
	f.srv.AddBooking(models.Booking{
		ID: id, CustomerID: f.user.ID, TreatmentID: gatewaytest.Abhyanga,
		Date: date, Time: "10:00", DurationMinutes: 60,
		Amount: 3500, Currency: models.CurrencyINR, Status: status,
		CreatedAt: clock, UpdatedAt: clock,
	})
}

func customer() models.CustomerInfo {
	return models.CustomerInfo{Name: "Meera Pillai", Email: "meera@example.com", Phone: "+91 98470 00000", Age: 34}
}

func fillDraft(t *testing.T, w *booking.Workflow) {
	t.Helper()
	ctx := context.Background()
	if err := w.SelectTreatment(ctx, gatewaytest.Abhyanga); err != nil {
		t.Fatalf("select treatment: %v", err)
	}
	if err := w.SetSchedule("2024-06-01", "10:00"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := w.SetCurrency(models.CurrencyUSD); err != nil {
		t.Fatalf("currency: %v", err)
	}
	if err := w.SetCustomer(customer()); err != nil {
		t.Fatalf("customer: %v", err)
	}
}

func TestBookingHappyPath(t *testing.T) {
	f := newFixture(t, false)
	fillDraft(t, f.w)

	b, err := f.w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.Status != models.BookingPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.Amount != 45 || b.Currency != models.CurrencyUSD {
		t.Fatalf("expected the listed USD price 45, got %v %s", b.Amount, b.Currency)
	}
	if b.TreatmentID != gatewaytest.Abhyanga || b.Date != "2024-06-01" || b.Time != "10:00" {
		t.Fatalf("unexpected booking %+v", b)
	}
	if f.w.State() != booking.StatePending {
		t.Fatalf("expected workflow in pending, got %s", f.w.State())
	}
	if list := f.w.List(); len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("new booking should head the list: %+v", list)
	}
}

func TestAutoConfirmPolicy(t *testing.T) {
	f := newFixture(t, true)
	fillDraft(t, f.w)

	b, err := f.w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.Status != models.BookingConfirmed || f.w.State() != booking.StateConfirmed {
		t.Fatalf("expected auto-confirmed booking, got %s / %s", b.Status, f.w.State())
	}
	if got, _ := f.srv.Booking(b.ID); got.Status != models.BookingConfirmed {
		t.Fatalf("server copy should be confirmed, got %s", got.Status)
	}
}

func TestSelectionIsMutuallyExclusive(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	if err := f.w.SelectTreatment(ctx, gatewaytest.Abhyanga); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SelectPackage(ctx, "panchakarma-kochi"); err != nil {
		t.Fatal(err)
	}
	d := f.w.Draft()
	if d.TreatmentID != "" || d.PackageID != "panchakarma-kochi" {
		t.Fatalf("package selection must clear the treatment: %+v", d)
	}
	if err := f.w.SelectTreatment(ctx, "shirodhara"); err != nil {
		t.Fatal(err)
	}
	d = f.w.Draft()
	if d.PackageID != "" || d.TreatmentID != "shirodhara" {
		t.Fatalf("treatment selection must clear the package: %+v", d)
	}

	if err := f.w.SelectTreatment(ctx, "udvartana"); !booking.IsSelectionConflict(err) {
		t.Fatalf("inactive treatment should conflict, got %v", err)
	}
	if f.w.Draft().TreatmentID != "shirodhara" {
		t.Fatal("a rejected selection must leave the draft unchanged")
	}
}

func TestCurrencySwitchRederivesAmount(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	if err := f.w.SelectTreatment(ctx, gatewaytest.Abhyanga); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		cur    models.Currency
		amount float64
	}{
		{models.CurrencyINR, 3500},
		{models.CurrencyUSD, 45},
		{models.CurrencyEUR, 41},
		{models.CurrencyINR, 3500},
	}
	for _, tc := range cases {
		if err := f.w.SetCurrency(tc.cur); err != nil {
			t.Fatal(err)
		}
		d := f.w.Draft()
		if d.Amount != tc.amount || d.Currency != tc.cur || d.TreatmentID != gatewaytest.Abhyanga {
			t.Fatalf("%s: unexpected draft %+v", tc.cur, d)
		}
	}

	// No listed USD price: converted from the base price and rounded.
	if err := f.w.SelectTreatment(ctx, "nasya"); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SetCurrency(models.CurrencyUSD); err != nil {
		t.Fatal(err)
	}
	if got := f.w.Draft().Amount; got != 21.6 {
		t.Fatalf("expected 1800 INR converted to 21.6 USD, got %v", got)
	}
	if err := f.w.SetCurrency("GBP"); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("unsupported currency should be rejected, got %v", err)
	}
	if f.w.Draft().Currency != models.CurrencyUSD {
		t.Fatal("rejected currency must leave the draft unchanged")
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	f := newFixture(t, false)
	fillDraft(t, f.w)
	before := f.w.Draft()

	f.srv.FailNext(http.MethodPost, "/bookings", http.StatusServiceUnavailable, nil)
	_, err := f.w.Submit(context.Background())
	if !gateway.IsKind(err, gateway.KindServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if f.w.State() != booking.StateDrafting {
		t.Fatalf("expected drafting after a failed submit, got %s", f.w.State())
	}
	if fmt.Sprintf("%+v", f.w.Draft()) != fmt.Sprintf("%+v", before) {
		t.Fatal("draft data lost after a failed submit")
	}

	if _, err := f.w.Submit(context.Background()); err != nil {
		t.Fatalf("retrying the same draft should succeed: %v", err)
	}
}

func TestSubmitValidatesLocally(t *testing.T) {
	f := newFixture(t, false)
	if err := f.w.SelectTreatment(context.Background(), gatewaytest.Abhyanga); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SetSchedule("2024-04-01", "10:00"); err != nil {
		t.Fatal(err)
	}

	_, err := f.w.Submit(context.Background())
	fields := gateway.FieldErrors(err)
	for _, k := range []string{"date", "customer.name", "customer.email", "customer.phone"} {
		if fields[k] == "" {
			t.Errorf("missing message for %s in %v", k, fields)
		}
	}
	if f.srv.Count(http.MethodPost, "/bookings") != 0 {
		t.Fatal("invalid draft must not be sent")
	}
}

func TestDraftIsFrozenAfterSubmit(t *testing.T) {
	f := newFixture(t, false)
	fillDraft(t, f.w)
	if _, err := f.w.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SetNotes("late"); !booking.IsInvalidTransition(err) {
		t.Fatalf("editing a submitted draft should be rejected, got %v", err)
	}
	if _, err := f.w.Submit(context.Background()); !booking.IsInvalidTransition(err) {
		t.Fatalf("submitting twice should be rejected, got %v", err)
	}
	f.w.NewDraft()
	if f.w.State() != booking.StateDrafting || f.w.Draft().TreatmentID != "" {
		t.Fatal("NewDraft should start an empty draft")
	}
}

func TestTherapistConflicts(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	saturdayMornings := models.Therapist{ID: "th1", Name: "Lakshmi", Availability: map[string][]string{"saturday": {"09:00"}}}

	if err := f.w.SelectTreatment(ctx, gatewaytest.Abhyanga); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SetSchedule("2024-06-01", "10:00"); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SelectTherapist(saturdayMornings); !booking.IsSelectionConflict(err) {
		t.Fatalf("therapist unavailable at 10:00 should conflict, got %v", err)
	}
	if err := f.w.SetSchedule("2024-06-01", "9:00 AM"); err != nil {
		t.Fatal(err)
	}
	if err := f.w.SelectTherapist(saturdayMornings); err != nil {
		t.Fatalf("therapist available at 09:00: %v", err)
	}
	if err := f.w.SetSchedule("2024-06-02", "09:00"); !booking.IsSelectionConflict(err) {
		t.Fatalf("moving to a day the therapist is off should conflict, got %v", err)
	}
	if d := f.w.Draft(); d.Date != "2024-06-01" || d.Time != "09:00" {
		t.Fatalf("rejected schedule change must keep the old slot: %+v", d)
	}

	if err := f.w.SelectPackage(ctx, "panchakarma-kochi"); err != nil {
		t.Fatal(err)
	}
	if f.w.Draft().TherapistID != "" {
		t.Fatal("selecting a package should clear the therapist")
	}
	if err := f.w.SelectTherapist(saturdayMornings); !booking.IsSelectionConflict(err) {
		t.Fatalf("packages take no therapist, got %v", err)
	}
}

func TestMedicalInfoIsAdvisory(t *testing.T) {
	f := newFixture(t, false)
	fillDraft(t, f.w)

	notes, err := f.w.SetMedical(models.MedicalInfo{Conditions: []string{"Recurring fever"}, Allergies: []string{"sesame"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected one contraindication note, got %v", notes)
	}
	b, err := f.w.Submit(context.Background())
	if err != nil {
		t.Fatalf("medical notes must not block the booking: %v", err)
	}
	if saved, _ := f.srv.Booking(b.ID); saved.Medical == nil || saved.Medical.Allergies[0] != "sesame" {
		t.Fatalf("medical details should be sent with the booking: %+v", saved.Medical)
	}
}

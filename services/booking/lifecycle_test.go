package booking_test

import (
	"context"
	"net/http"
	"testing"

	"ayurbook/models"
	"ayurbook/services/booking"
	"ayurbook/services/gateway"
	"ayurbook/utils"
)

func TestCancelOfCompletedBookingIsRejected(t *testing.T) {
	f := newFixture(t, false)
	f.seed("bk-done", models.BookingCompleted, "2024-04-01")

	_, err := f.w.Cancel(context.Background(), "bk-done", "changed my mind")
	if !booking.IsInvalidTransition(err) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	if f.srv.Count(http.MethodPost, "/bookings/:id/cancel") != 0 {
		t.Fatal("an illegal transition must not reach the server")
	}
	if got, _ := f.srv.Booking("bk-done"); got.Status != models.BookingCompleted {
		t.Fatalf("status changed on the server: %s", got.Status)
	}
	for _, b := range f.w.List() {
		if b.ID == "bk-done" && b.Status != models.BookingCompleted {
			t.Fatalf("status changed locally: %s", b.Status)
		}
	}
}

func TestStatusTransitionClosure(t *testing.T) {
	statuses := []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled}
	legal := map[[2]models.BookingStatus]bool{
		{models.BookingPending, models.BookingConfirmed}:   true,
		{models.BookingPending, models.BookingCancelled}:   true,
		{models.BookingConfirmed, models.BookingCancelled}: true,
		{models.BookingConfirmed, models.BookingCompleted}: true,
	}
	ctx := context.Background()

	for _, from := range statuses {
		for _, to := range []models.BookingStatus{models.BookingConfirmed, models.BookingCancelled, models.BookingCompleted} {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				f := newFixture(t, false)
				f.role.admin = true
				f.seed("bk", from, "2024-04-01")

				var err error
				switch to {
				case models.BookingConfirmed:
					_, err = f.w.Confirm(ctx, "bk")
				case models.BookingCancelled:
					_, err = f.w.Cancel(ctx, "bk", "schedule clash")
				case models.BookingCompleted:
					_, err = f.w.Complete(ctx, "bk")
				}
				got, _ := f.srv.Booking("bk")

				if legal[[2]models.BookingStatus{from, to}] {
					if err != nil {
						t.Fatalf("legal transition rejected: %v", err)
					}
					if got.Status != to {
						t.Fatalf("expected %s on the server, got %s", to, got.Status)
					}
					return
				}
				if !booking.IsInvalidTransition(err) {
					t.Fatalf("expected InvalidTransition, got %v", err)
				}
				if got.Status != from {
					t.Fatalf("rejected transition mutated the booking to %s", got.Status)
				}
			})
		}
	}
}

func TestFailedCommandRollsBack(t *testing.T) {
	f := newFixture(t, false)
	f.seed("bk", models.BookingPending, "2024-06-10")
	ctx := context.Background()
	if _, err := f.w.Bookings(ctx); err != nil {
		t.Fatal(err)
	}

	var seen []models.BookingStatus
	_ = f.events.Subscribe(utils.TopicBookings, func() {
		for _, b := range f.w.List() {
			if b.ID == "bk" {
				seen = append(seen, b.Status)
			}
		}
	})

	f.srv.FailNext(http.MethodPost, "/bookings/:id/confirm", http.StatusServiceUnavailable, nil)
	if _, err := f.w.Confirm(ctx, "bk"); !gateway.IsKind(err, gateway.KindServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if len(seen) != 2 || seen[0] != models.BookingConfirmed || seen[1] != models.BookingPending {
		t.Fatalf("expected tentative confirm then rollback, saw %v", seen)
	}
	if b := f.w.List()[0]; b.Status != models.BookingPending {
		t.Fatalf("local copy not rolled back: %s", b.Status)
	}

	if _, err := f.w.Confirm(ctx, "bk"); err != nil {
		t.Fatalf("confirm after rollback: %v", err)
	}
	if b := f.w.List()[0]; b.Status != models.BookingConfirmed {
		t.Fatalf("commit should keep the server version, got %s", b.Status)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t, false)
	f.seed("bk", models.BookingConfirmed, "2024-06-10")

	if _, err := f.w.Cancel(context.Background(), "bk", "  "); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	b, err := f.w.Cancel(context.Background(), "bk", "Travel plans changed")
	if err != nil {
		t.Fatal(err)
	}
	if b.Status != models.BookingCancelled || b.CancellationReason != "Travel plans changed" {
		t.Fatalf("unexpected booking %+v", b)
	}
}

func TestRescheduleKeepsStatus(t *testing.T) {
	f := newFixture(t, false)
	f.seed("bk", models.BookingConfirmed, "2024-06-10")
	f.seed("old", models.BookingCancelled, "2024-06-10")
	ctx := context.Background()

	b, err := f.w.Reschedule(ctx, "bk", "June 12, 2024", "2:30 PM")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if b.Date != "2024-06-12" || b.Time != "14:30" || b.Status != models.BookingConfirmed {
		t.Fatalf("unexpected booking %+v", b)
	}
	if _, err := f.w.Reschedule(ctx, "bk", "2024-04-20", "10:00"); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("past slot should be rejected, got %v", err)
	}
	if _, err := f.w.Reschedule(ctx, "old", "2024-06-20", "10:00"); !booking.IsInvalidTransition(err) {
		t.Fatalf("cancelled booking cannot be rescheduled, got %v", err)
	}
}

func TestCompleteIsAdminOnlyAndClockBound(t *testing.T) {
	f := newFixture(t, false)
	f.seed("past", models.BookingConfirmed, "2024-04-01")
	f.seed("future", models.BookingConfirmed, "2024-06-10")
	ctx := context.Background()

	if _, err := f.w.Complete(ctx, "past"); !gateway.IsKind(err, gateway.KindForbidden) {
		t.Fatalf("customer must not complete bookings, got %v", err)
	}
	f.role.admin = true
	if _, err := f.w.Complete(ctx, "future"); !booking.IsInvalidTransition(err) {
		t.Fatalf("booking in the future cannot be completed, got %v", err)
	}
	b, err := f.w.Complete(ctx, "past")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.Status != models.BookingCompleted {
		t.Fatalf("expected completed, got %s", b.Status)
	}
}

func TestRatingOnlyWhenCompleted(t *testing.T) {
	f := newFixture(t, false)
	f.seed("open", models.BookingPending, "2024-06-10")
	f.seed("done", models.BookingCompleted, "2024-04-01")
	ctx := context.Background()

	if _, err := f.w.Rate(ctx, "open", 5, ""); !booking.IsInvalidTransition(err) {
		t.Fatalf("pending booking cannot be rated, got %v", err)
	}
	if _, err := f.w.Rate(ctx, "done", 0, ""); !gateway.IsKind(err, gateway.KindValidation) {
		t.Fatalf("rating out of range, got %v", err)
	}
	b, err := f.w.Rate(ctx, "done", 4, "Very calming")
	if err != nil {
		t.Fatal(err)
	}
	if b.Rating == nil || *b.Rating != 4 || b.Review != "Very calming" {
		t.Fatalf("unexpected rated booking %+v", b)
	}
}

func TestMyBookingsListAndUpdate(t *testing.T) {
	f := newFixture(t, false)
	f.seed("a", models.BookingPending, "2024-06-10")
	f.seed("b", models.BookingCompleted, "2024-04-01")
	ctx := context.Background()

	list, err := f.w.Bookings(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("bookings: %d, %v", len(list), err)
	}
	b, err := f.w.Update(ctx, "a", "Please use unscented oil")
	if err != nil {
		t.Fatal(err)
	}
	if b.Notes != "Please use unscented oil" {
		t.Fatalf("notes not saved: %+v", b)
	}
	if _, err := f.w.Update(ctx, "b", "too late"); !booking.IsInvalidTransition(err) {
		t.Fatalf("completed booking notes are frozen, got %v", err)
	}
	if _, err := f.w.Booking(ctx, "missing"); !gateway.IsKind(err, gateway.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

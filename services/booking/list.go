package booking

import (
	"context"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"
)

func (w *Workflow) findLocked(id string) *models.Booking {
	for i := range w.bookings {
		if w.bookings[i].ID == id {
			return &w.bookings[i]
		}
	}
	return nil
}

// List returns a copy of the known bookings, most recent first.
func (w *Workflow) List() []models.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Booking{}, w.bookings...)
}

// Bookings reloads the signed-in user's bookings.
func (w *Workflow) Bookings(ctx context.Context) ([]models.Booking, error) {
	items, err := gateway.GetList[models.Booking](ctx, w.client, "/bookings", nil)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.bookings = items
	out := append([]models.Booking{}, items...)
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookings)
	return out, nil
}

// Booking fetches one booking and keeps it in the list.
func (w *Workflow) Booking(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := w.client.Get(ctx, bookingPath(id, ""), nil, &b); err != nil {
		return nil, err
	}
	w.mu.Lock()
	if cur := w.findLocked(b.ID); cur != nil {
		*cur = b
	} else {
		w.bookings = append([]models.Booking{b}, w.bookings...)
	}
	w.mu.Unlock()
	w.events.Publish(utils.TopicBookings)
	return &b, nil
}

// ensureLoaded makes sure id is in the local list so lifecycle checks run
// against its current status.
func (w *Workflow) ensureLoaded(ctx context.Context, id string) (*models.Booking, error) {
	w.mu.Lock()
	if b := w.findLocked(id); b != nil {
		cp := *b
		w.mu.Unlock()
		return &cp, nil
	}
	w.mu.Unlock()
	return w.Booking(ctx, id)
}

package admin

import (
	"ayurbook/services/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestDelete opens a delete ticket for record id. Nothing is removed
// until the ticket is confirmed.
func (c *Collection[T]) RequestDelete(id string) (string, error) {
	if err := c.requireAdmin("delete"); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(id) < 0 {
		return "", c.notFound(id)
	}
	ticket := uuid.New().String()
	c.tickets[ticket] = id
	return ticket, nil
}

// ConfirmDelete removes the record the ticket was issued for.
func (c *Collection[T]) ConfirmDelete(ticket string) error {
	if err := c.requireAdmin("delete"); err != nil {
		return err
	}
	c.mu.Lock()
	id, ok := c.tickets[ticket]
	if !ok {
		c.mu.Unlock()
		return &gateway.APIError{Kind: gateway.KindBadRequest, Message: "Unknown or expired delete confirmation"}
	}
	delete(c.tickets, ticket)
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return c.notFound(id)
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	// Other tickets for the same record are void now.
	for t, target := range c.tickets {
		if target == id {
			delete(c.tickets, t)
		}
	}
	c.mu.Unlock()
	c.changed()
	c.logger.Info("[Admin] deleted", zap.String("collection", c.schema.Name), zap.String("id", id))
	return nil
}

// CancelDelete drops a pending ticket. Unknown tickets are ignored.
func (c *Collection[T]) CancelDelete(ticket string) {
	c.mu.Lock()
	delete(c.tickets, ticket)
	c.mu.Unlock()
}

// PendingDeletes is the number of open tickets.
func (c *Collection[T]) PendingDeletes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}

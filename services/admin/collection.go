package admin

import (
	"context"
	"sync"
	"time"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Collection is an in-memory, most-recent-first entity list with CRUD,
// two-phase delete and filtered aggregates.
type Collection[T models.Record] struct {
	schema Schema[T]
	auth   Authorizer
	events *utils.Events
	logger *zap.Logger

	Now func() time.Time

	mu      sync.RWMutex
	items   []T
	filter  models.Filter
	tickets map[string]string // delete ticket -> record id
}

func NewCollection[T models.Record](schema Schema[T], perPage int, auth Authorizer, events *utils.Events, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		schema:  schema,
		auth:    auth,
		events:  events,
		logger:  logger,
		Now:     time.Now,
		filter:  models.NewFilter(perPage),
		tickets: map[string]string{},
	}
}

var _ QueryEngine[models.Booking] = (*Collection[models.Booking])(nil)

func (c *Collection[T]) requireAdmin(action string) error {
	if c.auth == nil || !c.auth.IsAdmin() {
		c.logger.Warn("[Admin] forbidden", zap.String("collection", c.schema.Name), zap.String("action", action))
		return &gateway.APIError{Kind: gateway.KindForbidden, Message: "Insufficient permission"}
	}
	return nil
}

func (c *Collection[T]) notFound(id string) error {
	return &gateway.APIError{Kind: gateway.KindNotFound, Message: c.schema.Name + " " + id + " not found"}
}

func (c *Collection[T]) indexLocked(id string) int {
	for i, it := range c.items {
		if c.schema.ID(it) == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) changed() {
	c.events.Publish(utils.TopicAdmin, c.schema.Name)
}

// Replace swaps the backing set, keeping the current filter.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	c.items = append([]T(nil), items...)
	c.mu.Unlock()
	c.changed()
}

// Load replaces the backing set with what fetch returns.
func (c *Collection[T]) Load(ctx context.Context, fetch func(ctx context.Context) ([]T, error)) error {
	items, err := fetch(ctx)
	if err != nil {
		return errors.Wrapf(err, "load %s", c.schema.Name)
	}
	c.Replace(items)
	c.logger.Debug("[Admin] loaded", zap.String("collection", c.schema.Name), zap.Int("count", len(items)))
	return nil
}

// Create assigns a new identity, stamps both timestamps and inserts item at
// the head of the collection.
func (c *Collection[T]) Create(item T) (T, error) {
	var zero T
	if err := c.requireAdmin("create"); err != nil {
		return zero, err
	}
	now := c.Now()
	c.schema.Stamp(&item, uuid.New().String(), now, true)
	if c.schema.Validate != nil {
		if err := c.schema.Validate(nil, item, now); err != nil {
			return zero, err
		}
	}
	c.mu.Lock()
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
	c.changed()
	c.logger.Info("[Admin] created", zap.String("collection", c.schema.Name), zap.String("id", c.schema.ID(item)))
	return item, nil
}

// Update merges patch into record id. Keys follow the JSON field names;
// fields absent from patch keep their value. The identity and creation time
// cannot be patched.
func (c *Collection[T]) Update(id string, patch map[string]interface{}) (T, error) {
	var zero T
	if err := c.requireAdmin("update"); err != nil {
		return zero, err
	}
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return zero, c.notFound(id)
	}
	prev := c.items[i]
	next, err := merge(prev, patch)
	if err != nil {
		c.mu.Unlock()
		return zero, gateway.NewValidationError(map[string]string{"patch": err.Error()})
	}
	now := c.Now()
	c.schema.Stamp(&next, id, now, false)
	if c.schema.Validate != nil {
		if err := c.schema.Validate(&prev, next, now); err != nil {
			c.mu.Unlock()
			return zero, err
		}
	}
	c.items[i] = next
	c.mu.Unlock()
	c.changed()
	c.logger.Info("[Admin] updated", zap.String("collection", c.schema.Name), zap.String("id", id))
	return next, nil
}

// merge decodes patch over a deep copy of base.
func merge[T any](base T, patch map[string]interface{}) (T, error) {
	var next T
	raw, err := json.Marshal(base)
	if err != nil {
		return next, err
	}
	if err := json.Unmarshal(raw, &next); err != nil {
		return next, err
	}
	clean := make(map[string]interface{}, len(patch))
	for k, v := range patch {
		switch k {
		case "id", "createdAt", "updatedAt":
			continue
		}
		clean[k] = v
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &next,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return next, err
	}
	if err := dec.Decode(clean); err != nil {
		return next, err
	}
	return next, nil
}

// Get returns record id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Len is the size of the backing set.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// BulkSetStatus patches the status of every id independently. It returns
// the ids that changed and the error of each id that did not.
func (c *Collection[T]) BulkSetStatus(ids []string, status string) ([]string, map[string]error) {
	failed := map[string]error{}
	if err := c.requireAdmin("bulk status"); err != nil {
		for _, id := range ids {
			failed[id] = err
		}
		return nil, failed
	}
	var done []string
	for _, id := range ids {
		if _, err := c.Update(id, map[string]interface{}{"status": status}); err != nil {
			failed[id] = err
			continue
		}
		done = append(done, id)
	}
	if len(failed) > 0 {
		c.logger.Sugar().Warnf("[Admin] bulk status %q on %s: %d of %d failed", status, c.schema.Name, len(failed), len(ids))
	}
	return done, failed
}

package catalog

import (
	"context"
	"sync"

	"ayurbook/models"
	"ayurbook/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrSuperseded is returned by a list fetch whose response arrived after a
// newer fetch of the same list had been issued. The response is dropped.
var ErrSuperseded = errors.New("response superseded by a newer request")

// Fetcher loads the backing set of a list for the given filter. The server
// may pre-filter; the store applies the filter again locally.
type Fetcher[T any] func(ctx context.Context, f models.Filter) ([]T, error)

// ListStore holds one filterable, sortable, paginated list. Filter changes
// refetch; sort and page changes only re-derive the view.
type ListStore[T models.Record] struct {
	name   string
	topic  string
	fetch  Fetcher[T]
	key    func(T) string
	events *utils.Events
	logger *zap.Logger

	mu      sync.RWMutex
	filter  models.Filter
	items   []T
	seq     uint64
	loading bool
	lastErr error
}

func NewListStore[T models.Record](name, topic string, perPage int, fetch Fetcher[T], key func(T) string, events *utils.Events, logger *zap.Logger) *ListStore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListStore[T]{
		name:   name,
		topic:  topic,
		fetch:  fetch,
		key:    key,
		events: events,
		logger: logger,
		filter: models.NewFilter(perPage),
	}
}

// Refresh refetches the backing set for the current filter.
func (s *ListStore[T]) Refresh(ctx context.Context) (models.Page[T], error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	f := s.filter
	s.loading = true
	s.mu.Unlock()

	items, err := s.fetch(ctx, f)

	s.mu.Lock()
	if seq != s.seq {
		page := models.Apply(s.items, s.filter)
		s.mu.Unlock()
		s.logger.Debug("[Catalog] dropping stale response", zap.String("list", s.name), zap.Uint64("seq", seq))
		return page, ErrSuperseded
	}
	s.loading = false
	s.lastErr = err
	if err == nil {
		s.items = items
	}
	page := models.Apply(s.items, s.filter)
	s.mu.Unlock()

	if err != nil {
		s.logger.Sugar().Infof("[Catalog] %s fetch failed: %v", s.name, err)
		return page, err
	}
	s.events.Publish(s.topic)
	return page, nil
}

// List makes f the current filter and fetches. A criteria change always
// lands on page 1.
func (s *ListStore[T]) List(ctx context.Context, f models.Filter) (models.Page[T], error) {
	s.mu.Lock()
	if f.ItemsPerPage <= 0 {
		f.ItemsPerPage = s.filter.ItemsPerPage
	}
	if f.Criteria != s.filter.Criteria {
		f = f.WithCriteria(f.Criteria)
	}
	s.filter = f.WithPage(f.CurrentPage)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// SetFilter replaces the criteria, resets to page 1 and refetches.
func (s *ListStore[T]) SetFilter(ctx context.Context, c models.Criteria) (models.Page[T], error) {
	s.mu.Lock()
	s.filter = s.filter.WithCriteria(c)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// SetSort changes the ordering and keeps the current page.
func (s *ListStore[T]) SetSort(sort models.Sort) models.Page[T] {
	s.mu.Lock()
	s.filter = s.filter.WithSort(sort)
	page := models.Apply(s.items, s.filter)
	s.mu.Unlock()
	s.events.Publish(s.topic)
	return page
}

// SetPage moves to page n. A page past the end yields an empty page.
func (s *ListStore[T]) SetPage(n int) models.Page[T] {
	s.mu.Lock()
	s.filter = s.filter.WithPage(n)
	page := models.Apply(s.items, s.filter)
	s.mu.Unlock()
	s.events.Publish(s.topic)
	return page
}

// View derives the current page from the backing set and filter.
func (s *ListStore[T]) View() models.Page[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Apply(s.items, s.filter)
}

func (s *ListStore[T]) Filter() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Loading reports whether the latest issued fetch is still outstanding.
func (s *ListStore[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the error of the latest accepted fetch.
func (s *ListStore[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Replace swaps the list entry with the same key as item, if present.
func (s *ListStore[T]) Replace(item T) {
	if s.key == nil {
		return
	}
	k := s.key(item)
	s.mu.Lock()
	replaced := false
	for i := range s.items {
		if s.key(s.items[i]) == k {
			s.items[i] = item
			replaced = true
			break
		}
	}
	s.mu.Unlock()
	if replaced {
		s.events.Publish(s.topic)
	}
}

package catalog

import (
	"context"
	"strings"
	"time"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"go.uber.org/zap"
)

// TreatmentStore is the treatment catalog. A non-empty search criterion is
// served by the search endpoint; both share one request sequence so a slow
// plain list cannot overwrite a newer search.
type TreatmentStore struct {
	*ListStore[models.Treatment]
	client  *gateway.Client
	details *DetailCache[models.Treatment]
}

func NewTreatmentStore(client *gateway.Client, perPage int, ttl time.Duration, events *utils.Events, logger *zap.Logger) *TreatmentStore {
	s := &TreatmentStore{client: client}
	s.ListStore = NewListStore[models.Treatment](
		"treatments", utils.TopicTreatments, perPage, s.fetchList,
		func(t models.Treatment) string { return t.ID },
		events, logger,
	)
	s.details = NewDetailCache[models.Treatment](ttl, s.fetchOne)
	return s
}

func (s *TreatmentStore) fetchList(ctx context.Context, f models.Filter) ([]models.Treatment, error) {
	query := f.Values()
	if q := strings.TrimSpace(f.Search); q != "" {
		query.Del("search")
		query.Set("q", q)
		return gateway.GetList[models.Treatment](ctx, s.client, "/treatments/search", query)
	}
	return gateway.GetList[models.Treatment](ctx, s.client, "/treatments", query)
}

func (s *TreatmentStore) fetchOne(ctx context.Context, id string) (models.Treatment, error) {
	var t models.Treatment
	err := s.client.Get(ctx, "/treatments/"+gateway.PathEscape(id), nil, &t)
	return t, err
}

// Search sets the free-text criterion, keeping the other criteria.
func (s *TreatmentStore) Search(ctx context.Context, query string) (models.Page[models.Treatment], error) {
	c := s.Filter().Criteria
	c.Search = query
	return s.SetFilter(ctx, c)
}

// Get returns the treatment detail, from cache when fresh.
func (s *TreatmentStore) Get(ctx context.Context, id string) (*models.Treatment, error) {
	t, err := s.details.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RefreshDetail refetches one treatment and updates it in the list.
func (s *TreatmentStore) RefreshDetail(ctx context.Context, id string) (*models.Treatment, error) {
	t, err := s.details.Refresh(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Replace(t)
	return &t, nil
}

// Categories lists the treatment categories.
func (s *TreatmentStore) Categories(ctx context.Context) ([]models.TreatmentCategory, error) {
	var out []models.TreatmentCategory
	if err := s.client.Get(ctx, "/treatments/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rate submits a 1..5 rating and keeps the returned treatment.
func (s *TreatmentStore) Rate(ctx context.Context, id string, rating int, review string) (*models.Treatment, error) {
	if rating < 1 || rating > 5 {
		return nil, gateway.NewValidationError(map[string]string{"rating": "must be between 1 and 5"})
	}
	var t models.Treatment
	path := "/treatments/" + gateway.PathEscape(id) + "/rate"
	if err := s.client.Post(ctx, path, models.RatingRequest{Rating: rating, Review: strings.TrimSpace(review)}, &t); err != nil {
		return nil, err
	}
	s.details.Put(t.ID, t)
	s.Replace(t)
	return &t, nil
}

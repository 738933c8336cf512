package catalog

import (
	"context"
	"net/url"
	"time"

	"ayurbook/models"
	"ayurbook/services/gateway"
	"ayurbook/utils"

	"go.uber.org/zap"
)

// PackageStore is the wellness package catalog.
type PackageStore struct {
	*ListStore[models.Package]
	client  *gateway.Client
	details *DetailCache[models.Package]
}

func NewPackageStore(client *gateway.Client, perPage int, ttl time.Duration, events *utils.Events, logger *zap.Logger) *PackageStore {
	s := &PackageStore{client: client}
	s.ListStore = NewListStore[models.Package](
		"packages", utils.TopicPackages, perPage, s.fetchList,
		func(p models.Package) string { return p.ID },
		events, logger,
	)
	s.details = NewDetailCache[models.Package](ttl, s.fetchOne)
	return s
}

func (s *PackageStore) fetchList(ctx context.Context, f models.Filter) ([]models.Package, error) {
	return gateway.GetList[models.Package](ctx, s.client, "/packages", f.Values())
}

func (s *PackageStore) fetchOne(ctx context.Context, id string) (models.Package, error) {
	var p models.Package
	err := s.client.Get(ctx, "/packages/"+gateway.PathEscape(id), nil, &p)
	return p, err
}

func (s *PackageStore) Get(ctx context.Context, id string) (*models.Package, error) {
	p, err := s.details.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PackageStore) RefreshDetail(ctx context.Context, id string) (*models.Package, error) {
	p, err := s.details.Refresh(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Replace(p)
	return &p, nil
}

// Availability lists the start dates of package id in month (YYYY-MM).
// An empty month asks for the current month.
func (s *PackageStore) Availability(ctx context.Context, id, month string) (*models.PackageAvailability, error) {
	query := url.Values{}
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, gateway.NewValidationError(map[string]string{"month": "must be YYYY-MM"})
		}
		query.Set("month", month)
	}
	var out models.PackageAvailability
	if err := s.client.Get(ctx, "/packages/"+gateway.PathEscape(id)+"/availability", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pricing returns the price breakdown of package id in cur.
func (s *PackageStore) Pricing(ctx context.Context, id string, cur models.Currency) (*models.PackagePricing, error) {
	parsed, err := models.ParseCurrency(string(cur))
	if err != nil {
		return nil, gateway.NewValidationError(map[string]string{"currency": err.Error()})
	}
	var out models.PackagePricing
	query := url.Values{"currency": {string(parsed)}}
	if err := s.client.Get(ctx, "/packages/"+gateway.PathEscape(id)+"/pricing", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

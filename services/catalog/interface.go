package catalog

import (
	"context"

	"ayurbook/models"
)

type TreatmentCatalog interface {
	List(ctx context.Context, f models.Filter) (models.Page[models.Treatment], error)
	Search(ctx context.Context, query string) (models.Page[models.Treatment], error)
	SetFilter(ctx context.Context, c models.Criteria) (models.Page[models.Treatment], error)
	SetSort(sort models.Sort) models.Page[models.Treatment]
	SetPage(n int) models.Page[models.Treatment]
	View() models.Page[models.Treatment]
	Get(ctx context.Context, id string) (*models.Treatment, error)
	RefreshDetail(ctx context.Context, id string) (*models.Treatment, error)
	Categories(ctx context.Context) ([]models.TreatmentCategory, error)
	Rate(ctx context.Context, id string, rating int, review string) (*models.Treatment, error)
}

type PackageCatalog interface {
	List(ctx context.Context, f models.Filter) (models.Page[models.Package], error)
	SetFilter(ctx context.Context, c models.Criteria) (models.Page[models.Package], error)
	SetSort(sort models.Sort) models.Page[models.Package]
	SetPage(n int) models.Page[models.Package]
	View() models.Page[models.Package]
	Get(ctx context.Context, id string) (*models.Package, error)
	RefreshDetail(ctx context.Context, id string) (*models.Package, error)
	Availability(ctx context.Context, id, month string) (*models.PackageAvailability, error)
	Pricing(ctx context.Context, id string, cur models.Currency) (*models.PackagePricing, error)
}

var (
	_ TreatmentCatalog = (*TreatmentStore)(nil)
	_ PackageCatalog   = (*PackageStore)(nil)
)

package booking

import (
	"ayurbook/models"
	"ayurbook/utils"

	"github.com/pkg/errors"
)

// priced is what a draft can be priced from.
type priced interface {
	ListedPrice(cur models.Currency) (float64, bool)
}

// quote returns the price of item in cur: the listed price when the catalog
// publishes one, otherwise the base price converted through rates.
func quote(item priced, basePrice float64, baseCur, cur models.Currency, rates utils.RateTable) (float64, error) {
	if p, ok := item.ListedPrice(cur); ok {
		return cur.Round(p), nil
	}
	if baseCur == "" {
		baseCur = models.CurrencyINR
	}
	amount, err := rates.ConvertCurrency(basePrice, baseCur, cur)
	if err != nil {
		return 0, errors.Wrapf(err, "price in %s", cur)
	}
	return amount, nil
}

// Quote prices a treatment in cur.
func Quote(t models.Treatment, cur models.Currency, rates utils.RateTable) (float64, error) {
	return quote(t, t.Price, t.Currency, cur, rates)
}

// QuotePackage prices a package in cur.
func QuotePackage(p models.Package, cur models.Currency, rates utils.RateTable) (float64, error) {
	return quote(p, p.Price, p.Currency, cur, rates)
}

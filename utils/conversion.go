package utils

import (
	"fmt"

	"ayurbook/config"
	"ayurbook/models"
)

// RateTable holds how many units of each currency equal one unit of the
// local currency (INR).
type RateTable map[models.Currency]float64

// DefaultRates builds the table from AppConfig.
func DefaultRates() RateTable {
	return RateTable{
		models.CurrencyINR: 1,
		models.CurrencyUSD: config.AppConfig.RateUSD,
		models.CurrencyEUR: config.AppConfig.RateEUR,
	}
}

// ConvertCurrency converts amount between currencies and rounds to the
// target's standard scale.
func (r RateTable) ConvertCurrency(amount float64, from, to models.Currency) (float64, error) {
	if from == to {
		return to.Round(amount), nil
	}
	fromRate, ok := r[from]
	if !ok || fromRate <= 0 {
		return 0, fmt.Errorf("exchange rate for %s not found", from)
	}
	toRate, ok := r[to]
	if !ok || toRate <= 0 {
		return 0, fmt.Errorf("exchange rate for %s not found", to)
	}
	return to.Round(amount / fromRate * toRate), nil
}

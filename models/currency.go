package models

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 code from the fixed set the storefront can display.
type Currency string

const (
	CurrencyINR Currency = "INR" // local currency
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// SupportedCurrencies lists the display currencies in menu order.
var SupportedCurrencies = []Currency{CurrencyINR, CurrencyUSD, CurrencyEUR}

// ParseCurrency validates s as an ISO code and as one of SupportedCurrencies.
func ParseCurrency(s string) (Currency, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", s, err)
	}
	c := Currency(unit.String())
	if !c.Supported() {
		return "", fmt.Errorf("currency %s is not supported", c)
	}
	return c, nil
}

// Supported reports whether c is one of SupportedCurrencies.
func (c Currency) Supported() bool {
	for _, s := range SupportedCurrencies {
		if s == c {
			return true
		}
	}
	return false
}

func (c Currency) unit() currency.Unit {
	u, err := currency.ParseISO(string(c))
	if err != nil {
		return currency.Unit{}
	}
	return u
}

// Scale returns the number of decimals used for amounts in c.
func (c Currency) Scale() int {
	scale, _ := currency.Standard.Rounding(c.unit())
	return scale
}

// Round rounds amount to the standard rounding of c.
func (c Currency) Round(amount float64) float64 {
	scale, increment := currency.Standard.Rounding(c.unit())
	if increment <= 0 {
		increment = 1
	}
	factor := math.Pow10(scale) / float64(increment)
	return math.Round(amount*factor) / factor
}

// Format renders amount as "USD 12.50".
func (c Currency) Format(amount float64) string {
	return fmt.Sprintf("%s %.*f", c, c.Scale(), c.Round(amount))
}

package services

import (
	"strings"

	"checkout-service/models"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"brl": "R$",
	"usd": "US$",
	"eur": "€",
}

// NewAmount converts a minor-unit integer into the display and numeric forms
// used by relayed payloads. Both are derived from the same decimal value.
func NewAmount(minor int64, currency string) models.Amount {
	major := fromMinor(minor)
	value, _ := major.Float64()
	return models.Amount{
		Display: FormatMoney(major, currency),
		Value:   value,
	}
}

// FormatMoney renders "R$ 14,90": symbol, space, two decimals, comma separator.
func FormatMoney(major decimal.Decimal, currency string) string {
	return currencySymbol(currency) + " " + FormatDecimal(major)
}

// FormatDecimal renders a value with two decimals and a comma separator, without symbol.
func FormatDecimal(major decimal.Decimal) string {
	return strings.Replace(major.StringFixed(2), ".", ",", 1)
}

func fromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func currencySymbol(currency string) string {
	code := strings.ToLower(strings.TrimSpace(currency))
	if code == "" {
		return currencySymbols["brl"]
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym
	}
	return strings.ToUpper(code)
}

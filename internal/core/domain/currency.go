package domain

import (
	"github.com/shopspring/decimal"
)

// Transferability is the tri-state transfer permission of a currency.
type Transferability string

const (
	TransferAllowed Transferability = "ALLOWED"
	TransferDenied  Transferability = "DENIED"
	TransferUnset   Transferability = "UNSET"
)

// SymbolPosition controls where the currency symbol is placed relative
// to the numeric value.
type SymbolPosition string

const (
	SymbolBefore SymbolPosition = "BEFORE"
	SymbolAfter  SymbolPosition = "AFTER"
)

// Currency describes a unit of account. Values are immutable after
// construction; two currencies with the same ID are the same currency.
type Currency struct {
	ID              string          `json:"id"`
	DisplayName     string          `json:"display_name"`
	PluralName      string          `json:"plural_name"`
	Symbol          string          `json:"symbol"`
	DecimalPlaces   int32           `json:"decimal_places"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Transferable    Transferability `json:"transferable"`
	Primary         bool            `json:"primary"`
	SymbolPosition  SymbolPosition  `json:"symbol_position"`
}

// Round rounds an amount to the currency's decimal precision, half up.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.DecimalPlaces)
}

// Format renders the amount with the currency symbol, e.g. "$17.38".
func (c Currency) Format(amount decimal.Decimal) string {
	value := c.Round(amount).StringFixed(c.DecimalPlaces)
	if c.SymbolPosition == SymbolAfter {
		return value + c.Symbol
	}
	return c.Symbol + value
}

// FormatPlain renders the amount followed by the unit name,
// e.g. "1.00 Dollar" / "2.50 Dollars". The singular name is used when the
// rounded amount is exactly one in absolute value.
func (c Currency) FormatPlain(amount decimal.Decimal) string {
	rounded := c.Round(amount)
	name := c.PluralName
	if rounded.Abs().Equal(decimal.NewFromInt(1)) {
		name = c.DisplayName
	}
	return rounded.StringFixed(c.DecimalPlaces) + " " + name
}

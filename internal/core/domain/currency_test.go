package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dollar() Currency {
	return Currency{
		ID:              "dollar",
		DisplayName:     "Dollar",
		PluralName:      "Dollars",
		Symbol:          "$",
		DecimalPlaces:   2,
		StartingBalance: decimal.Zero,
		Transferable:    TransferUnset,
		Primary:         true,
		SymbolPosition:  SymbolBefore,
	}
}

func TestCurrency_Format_SymbolBefore(t *testing.T) {
	c := dollar()

	amount, err := decimal.NewFromString("17.38")
	require.NoError(t, err)

	assert.Equal(t, "$17.38", c.Format(amount))
	assert.Equal(t, "$0.00", c.Format(decimal.Zero))
}

func TestCurrency_Format_SymbolAfter(t *testing.T) {
	c := dollar()
	c.Symbol = "kr"
	c.SymbolPosition = SymbolAfter

	assert.Equal(t, "12.50kr", c.Format(decimal.RequireFromString("12.5")))
}

func TestCurrency_Format_RoundsHalfUp(t *testing.T) {
	c := dollar()

	assert.Equal(t, "$17.39", c.Format(decimal.RequireFromString("17.385")))
	assert.Equal(t, "$17.38", c.Format(decimal.RequireFromString("17.3849")))
}

func TestCurrency_FormatPlain_SingularAndPlural(t *testing.T) {
	c := dollar()

	assert.Equal(t, "1.00 Dollar", c.FormatPlain(decimal.NewFromInt(1)))
	assert.Equal(t, "-1.00 Dollar", c.FormatPlain(decimal.NewFromInt(-1)))
	assert.Equal(t, "2.50 Dollars", c.FormatPlain(decimal.RequireFromString("2.5")))
	assert.Equal(t, "0.00 Dollars", c.FormatPlain(decimal.Zero))
}

func TestCurrency_FormatPlain_SingularAfterRounding(t *testing.T) {
	c := dollar()

	// 1.0049 rounds to 1.00, which is singular
	assert.Equal(t, "1.00 Dollar", c.FormatPlain(decimal.RequireFromString("1.0049")))
}

func TestCurrency_Round_ZeroDecimalPlaces(t *testing.T) {
	c := dollar()
	c.DecimalPlaces = 0

	assert.True(t, c.Round(decimal.RequireFromString("2.5")).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "$3", c.Format(decimal.RequireFromString("2.5")))
}

func TestVirtualOwnerID_Deterministic(t *testing.T) {
	a := VirtualOwnerID("town-bank")
	b := VirtualOwnerID("town-bank")
	c := VirtualOwnerID("guild-vault")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestAccountKey_String(t *testing.T) {
	owner := VirtualOwnerID("town-bank")
	key := AccountKey{CurrencyID: "dollar", OwnerID: owner}

	assert.Equal(t, "dollar:"+owner.String(), key.String())
}

package service

import (
	"fmt"

	"economy-ledger/config"
	"economy-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CurrencyProvider resolves currency identifiers to Currency values and
// designates exactly one primary currency. The registry is built once from
// configuration and is not externally extensible.
type CurrencyProvider struct {
	primary domain.Currency
	byID    map[string]domain.Currency
	ordered []domain.Currency
}

// NewCurrencyProvider builds a provider from a currency set. Construction
// fails fast when the set is empty, contains duplicate ids, or does not
// designate exactly one primary currency.
func NewCurrencyProvider(currencies []domain.Currency) (*CurrencyProvider, error) {
	if len(currencies) == 0 {
		return nil, fmt.Errorf("currency provider: no currencies defined")
	}

	p := &CurrencyProvider{
		byID:    make(map[string]domain.Currency, len(currencies)),
		ordered: make([]domain.Currency, 0, len(currencies)),
	}

	primaries := 0
	for _, cur := range currencies {
		if cur.ID == "" {
			return nil, fmt.Errorf("currency provider: currency with empty id")
		}
		if _, dup := p.byID[cur.ID]; dup {
			return nil, fmt.Errorf("currency provider: duplicate currency id %q", cur.ID)
		}
		p.byID[cur.ID] = cur
		p.ordered = append(p.ordered, cur)
		if cur.Primary {
			p.primary = cur
			primaries++
		}
	}
	if primaries != 1 {
		return nil, fmt.Errorf("currency provider: exactly one primary currency required, got %d", primaries)
	}

	return p, nil
}

// Primary returns the primary currency. Never empty: construction
// guarantees one exists.
func (p *CurrencyProvider) Primary() domain.Currency {
	return p.primary
}

// Currency resolves a currency by id.
func (p *CurrencyProvider) Currency(id string) (domain.Currency, bool) {
	cur, ok := p.byID[id]
	return cur, ok
}

// Registered returns every known currency in configuration order.
func (p *CurrencyProvider) Registered() []domain.Currency {
	out := make([]domain.Currency, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// Register reports whether the currency was added. The config-backed
// registry is static, so it always returns false without error.
func (p *CurrencyProvider) Register(domain.Currency) (bool, error) {
	return false, nil
}

// ProviderFromConfig translates currency configuration into a provider.
func ProviderFromConfig(cfgs []config.CurrencyConfig) (*CurrencyProvider, error) {
	currencies := make([]domain.Currency, 0, len(cfgs))
	for _, c := range cfgs {
		starting, err := decimal.NewFromString(c.StartingBalance)
		if err != nil {
			return nil, fmt.Errorf("currency %q: starting balance %q: %w", c.ID, c.StartingBalance, err)
		}

		transferable, err := parseTransferability(c.Transferable)
		if err != nil {
			return nil, fmt.Errorf("currency %q: %w", c.ID, err)
		}

		position := domain.SymbolBefore
		switch c.SymbolPosition {
		case "", "before":
			position = domain.SymbolBefore
		case "after":
			position = domain.SymbolAfter
		default:
			return nil, fmt.Errorf("currency %q: symbol position %q", c.ID, c.SymbolPosition)
		}

		if c.DecimalPlaces < 0 {
			return nil, fmt.Errorf("currency %q: negative decimal places", c.ID)
		}

		currencies = append(currencies, domain.Currency{
			ID:              c.ID,
			DisplayName:     c.DisplayName,
			PluralName:      c.PluralName,
			Symbol:          c.Symbol,
			DecimalPlaces:   c.DecimalPlaces,
			StartingBalance: starting.Round(c.DecimalPlaces),
			Transferable:    transferable,
			Primary:         c.Primary,
			SymbolPosition:  position,
		})
	}
	return NewCurrencyProvider(currencies)
}

func parseTransferability(raw string) (domain.Transferability, error) {
	switch raw {
	case "allowed":
		return domain.TransferAllowed, nil
	case "denied":
		return domain.TransferDenied, nil
	case "", "unset":
		return domain.TransferUnset, nil
	default:
		return "", fmt.Errorf("transferable %q (want allowed, denied or unset)", raw)
	}
}

package service

import (
	"fmt"

	"economy-ledger/config"

	"github.com/shopspring/decimal"
)

// RestrictionPolicy holds the numeric and permission bounds consulted
// before every mutation. Read-only after construction; reloading
// configuration requires rebuilding the service.
type RestrictionPolicy struct {
	Enabled               bool
	MinBalance            decimal.Decimal
	MaxBalance            decimal.Decimal
	AllowCrossCurrency    bool
	AllowTransferOnUnset  bool
	MaxLeaderboardEntries int
}

// PolicyFromConfig translates restriction configuration into a policy.
func PolicyFromConfig(cfg config.RestrictionConfig) (RestrictionPolicy, error) {
	minBalance, err := decimal.NewFromString(cfg.MinBalance)
	if err != nil {
		return RestrictionPolicy{}, fmt.Errorf("restrictions: min balance %q: %w", cfg.MinBalance, err)
	}
	maxBalance, err := decimal.NewFromString(cfg.MaxBalance)
	if err != nil {
		return RestrictionPolicy{}, fmt.Errorf("restrictions: max balance %q: %w", cfg.MaxBalance, err)
	}
	if cfg.Enabled && maxBalance.LessThan(minBalance) {
		return RestrictionPolicy{}, fmt.Errorf("restrictions: max balance %s below min balance %s", maxBalance, minBalance)
	}
	if cfg.MaxLeaderboardEntries < 0 {
		return RestrictionPolicy{}, fmt.Errorf("restrictions: negative max leaderboard entries")
	}

	return RestrictionPolicy{
		Enabled:               cfg.Enabled,
		MinBalance:            minBalance,
		MaxBalance:            maxBalance,
		AllowCrossCurrency:    cfg.AllowCrossCurrency,
		AllowTransferOnUnset:  cfg.AllowTransferOnUnset,
		MaxLeaderboardEntries: cfg.MaxLeaderboardEntries,
	}, nil
}

// aboveMax reports whether a balance would breach the upper bound.
func (p RestrictionPolicy) aboveMax(balance decimal.Decimal) bool {
	return p.Enabled && balance.GreaterThan(p.MaxBalance)
}

// belowMin reports whether a balance would breach the lower bound.
func (p RestrictionPolicy) belowMin(balance decimal.Decimal) bool {
	return p.Enabled && balance.LessThan(p.MinBalance)
}

// outOfBounds reports whether a balance lies outside [min, max].
func (p RestrictionPolicy) outOfBounds(balance decimal.Decimal) bool {
	return p.belowMin(balance) || p.aboveMax(balance)
}

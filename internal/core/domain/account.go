package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// virtualNamespace namespaces name-derived owner IDs for virtual accounts
// so they can never collide with player UUIDs.
var virtualNamespace = uuid.MustParse("9c5e61b5-9a3f-4c44-8a6b-16e4b175f1d2")

// AccountKey addresses an account. Accounts are always keyed by the pair
// (currency, owner), never by currency alone.
type AccountKey struct {
	CurrencyID string    `json:"currency_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
}

// String returns the canonical "currency:owner" form of the key.
func (k AccountKey) String() string {
	return k.CurrencyID + ":" + k.OwnerID.String()
}

// VirtualOwnerID derives a stable owner UUID from a virtual account name.
func VirtualOwnerID(name string) uuid.UUID {
	return uuid.NewSHA1(virtualNamespace, []byte(name))
}

// AccountRecord is the persisted shape of an account: one record per
// (currency, owner) holding the balance and the virtual flag.
type AccountRecord struct {
	Key     AccountKey      `json:"key"`
	Balance decimal.Decimal `json:"balance"`
	Virtual bool            `json:"virtual"`
}

package service

import (
	"sync"

	"economy-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Account is a guarded handle over one (currency, owner) balance. Handles
// are unique per key within an Economy, so the handle's mutex is the
// account's mutation scope: two mutations against the same key run in some
// serial order, never interleaved, while different accounts mutate freely
// in parallel.
//
// Once loaded, the in-memory balance is authoritative; the store is the
// durable backing written behind the mutation, not a second source of
// truth.
type Account struct {
	key      domain.AccountKey
	currency domain.Currency
	virtual  bool
	eco      *Economy

	mu      sync.Mutex
	balance decimal.Decimal
}

// Key returns the (currency, owner) pair addressing this account.
func (a *Account) Key() domain.AccountKey {
	return a.key
}

// Currency returns the account's currency.
func (a *Account) Currency() domain.Currency {
	return a.currency
}

// Virtual reports whether the account is a virtual (non-player) account.
func (a *Account) Virtual() bool {
	return a.virtual
}

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Record returns a point-in-time snapshot of the account.
func (a *Account) Record() domain.AccountRecord {
	return domain.AccountRecord{Key: a.key, Balance: a.Balance(), Virtual: a.virtual}
}

// Deposit adds amount to the balance. Negative amounts are rejected as
// INVALID; a deposit that would push the balance over the policy maximum
// is rejected as FAILED. The balance is unchanged on rejection.
func (a *Account) Deposit(amount decimal.Decimal) *domain.Transaction {
	return a.DepositWithMessages(amount, nil)
}

// DepositWithMessages is Deposit with message templates attached to the
// resulting transaction.
func (a *Account) DepositWithMessages(amount decimal.Decimal, messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	a.mu.Lock()
	txn := a.depositLocked(amount, messages)
	a.mu.Unlock()
	a.eco.publish(txn)
	return txn
}

// Withdraw subtracts amount from the balance. Negative amounts are
// rejected as INVALID; a withdrawal that would push the balance under the
// policy minimum is rejected as NOT_ENOUGH_FUNDS.
func (a *Account) Withdraw(amount decimal.Decimal) *domain.Transaction {
	return a.WithdrawWithMessages(amount, nil)
}

// WithdrawWithMessages is Withdraw with message templates attached.
func (a *Account) WithdrawWithMessages(amount decimal.Decimal, messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	a.mu.Lock()
	txn := a.withdrawLocked(amount, messages)
	a.mu.Unlock()
	a.eco.publish(txn)
	return txn
}

// Set overwrites the balance. A target outside the policy bounds is
// rejected as INVALID.
func (a *Account) Set(amount decimal.Decimal) *domain.Transaction {
	return a.SetWithMessages(amount, nil)
}

// SetWithMessages is Set with message templates attached.
func (a *Account) SetWithMessages(amount decimal.Decimal, messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	a.mu.Lock()
	txn := a.setLocked(amount, messages)
	a.mu.Unlock()
	a.eco.publish(txn)
	return txn
}

// Reset restores the balance to the currency's starting balance.
func (a *Account) Reset() *domain.Transaction {
	a.mu.Lock()
	txn := a.resetLocked(nil)
	a.mu.Unlock()
	a.eco.publish(txn)
	return txn
}

func (a *Account) depositLocked(amount decimal.Decimal, messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	amount = a.currency.Round(amount)
	before := a.balance

	if amount.IsNegative() {
		return domain.NewTransaction(a.key, domain.TransactionTypeDeposit, amount, before, before, domain.ResultInvalid, messages)
	}

	next := before.Add(amount)
	if a.eco.policy.aboveMax(next) {
		return domain.NewTransaction(a.key, domain.TransactionTypeDeposit, amount, before, before, domain.ResultFailed, messages)
	}

	a.applyLocked(next)
	return domain.NewTransaction(a.key, domain.TransactionTypeDeposit, amount, before, next, domain.ResultSuccess, messages)
}

func (a *Account) withdrawLocked(amount decimal.Decimal, messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	amount = a.currency.Round(amount)
	before := a.balance

	if amount.IsNegative() {
		return domain.NewTransaction(a.key, domain.TransactionTypeWithdraw, amount, before, before, domain.ResultInvalid, messages)
	}

	next := before.Sub(amount)
	if a.eco.policy.belowMin(next) {
		return domain.NewTransaction(a.key, domain.TransactionTypeWithdraw, amount, before, before, domain.ResultNotEnoughFunds, messages)
	}

	a.applyLocked(next)
	return domain.NewTransaction(a.key, domain.TransactionTypeWithdraw, amount, before, next, domain.ResultSuccess, messages)
}

func (a *Account) setLocked(amount decimal.Decimal, messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	amount = a.currency.Round(amount)
	before := a.balance

	if a.eco.policy.outOfBounds(amount) {
		return domain.NewTransaction(a.key, domain.TransactionTypeSet, amount, before, before, domain.ResultInvalid, messages)
	}

	a.applyLocked(amount)
	return domain.NewTransaction(a.key, domain.TransactionTypeSet, amount, before, amount, domain.ResultSuccess, messages)
}

func (a *Account) resetLocked(messages map[domain.ResultCode]domain.MessageTemplate) *domain.Transaction {
	before := a.balance
	next := a.currency.Round(a.currency.StartingBalance)
	a.applyLocked(next)
	return domain.NewTransaction(a.key, domain.TransactionTypeReset, next, before, next, domain.ResultSuccess, messages)
}

// creditUnchecked re-credits the source of a failed transfer. The balance
// returns to its prior, already-valid value, so no policy check applies
// and no user-visible transaction is produced.
func (a *Account) creditUnchecked(amount decimal.Decimal) {
	a.applyLocked(a.balance.Add(amount))
}

// applyLocked commits the new balance and schedules the durable write.
// Caller holds a.mu, so writes for one account enqueue in mutation order.
func (a *Account) applyLocked(next decimal.Decimal) {
	a.balance = next
	a.eco.persister.enqueue(persistRequest{key: a.key, balance: next, virtual: a.virtual})
}

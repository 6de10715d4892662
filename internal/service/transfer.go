package service

import (
	"economy-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Transfer composes a withdraw on the source account with a deposit on the
// destination. Build it fluently, then Execute:
//
//	result := service.ComposeTransfer().
//		From(payer).
//		To(payee).
//		Amount(amount).
//		Message(domain.ResultNotEnoughFunds, tmpl).
//		Execute()
//
// Execute holds both accounts' mutation scopes for the whole exchange; a
// deposit failure after a successful withdraw re-credits the source before
// returning, so no partial transfer survives a non-SUCCESS result.
type Transfer struct {
	from     *Account
	to       *Account
	amount   decimal.Decimal
	messages map[domain.ResultCode]domain.MessageTemplate
}

// ComposeTransfer starts a transfer composition.
func ComposeTransfer() *Transfer {
	return &Transfer{}
}

// From sets the source account.
func (t *Transfer) From(a *Account) *Transfer {
	t.from = a
	return t
}

// To sets the destination account.
func (t *Transfer) To(a *Account) *Transfer {
	t.to = a
	return t
}

// Amount sets the amount to move.
func (t *Transfer) Amount(amount decimal.Decimal) *Transfer {
	t.amount = amount
	return t
}

// Message binds a template to a result code. The template is carried by
// the composed transfer and by both component transactions.
func (t *Transfer) Message(code domain.ResultCode, tmpl domain.MessageTemplate) *Transfer {
	if t.messages == nil {
		t.messages = make(map[domain.ResultCode]domain.MessageTemplate)
	}
	t.messages[code] = tmpl
	return t
}

// Execute runs the transfer and returns its outcome. Rejections that
// happen before either leg runs carry no component transactions.
func (t *Transfer) Execute() *domain.TransferTransaction {
	if t.from == nil || t.to == nil {
		return domain.NewTransferTransaction(nil, nil, t.amount, domain.ResultInvalid, t.messages)
	}

	amount := t.from.currency.Round(t.amount)
	if amount.IsNegative() {
		return domain.NewTransferTransaction(nil, nil, amount, domain.ResultInvalid, t.messages)
	}

	policy := t.from.eco.policy

	if t.from.currency.ID != t.to.currency.ID && !policy.AllowCrossCurrency {
		return domain.NewTransferTransaction(nil, nil, amount, domain.ResultInvalid, t.messages)
	}

	switch t.from.currency.Transferable {
	case domain.TransferDenied:
		return domain.NewTransferTransaction(nil, nil, amount, domain.ResultInvalid, t.messages)
	case domain.TransferUnset:
		if !policy.AllowTransferOnUnset {
			return domain.NewTransferTransaction(nil, nil, amount, domain.ResultInvalid, t.messages)
		}
	}

	withdrawTxn, depositTxn, result := t.exchange(amount)

	t.from.eco.publish(withdrawTxn)
	t.from.eco.publish(depositTxn)

	return domain.NewTransferTransaction(withdrawTxn, depositTxn, amount, result, t.messages)
}

// exchange runs both legs while holding both mutation scopes. Locks are
// taken in key order so two opposing transfers cannot deadlock.
func (t *Transfer) exchange(amount decimal.Decimal) (withdrawTxn, depositTxn *domain.Transaction, result domain.ResultCode) {
	first, second := t.from, t.to
	if second.key.String() < first.key.String() {
		first, second = second, first
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	if first != second {
		second.mu.Lock()
		defer second.mu.Unlock()
	}

	withdrawTxn = t.from.withdrawLocked(amount, t.messages)
	if !withdrawTxn.Successful() {
		return withdrawTxn, nil, withdrawTxn.Result
	}

	depositTxn = t.to.depositLocked(amount, t.messages)
	if !depositTxn.Successful() {
		// Restore the source. The compensation is not a user-visible
		// transaction and the overall result reflects the deposit failure.
		t.from.creditUnchecked(amount)
		return withdrawTxn, depositTxn, depositTxn.Result
	}

	return withdrawTxn, depositTxn, domain.ResultSuccess
}

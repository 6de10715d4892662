package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable outcome record of a single balance mutation.
// A failed mutation still produces a Transaction; the result code tells the
// caller what happened and the balance fields what state the account was
// left in (unchanged unless Result is SUCCESS).
type Transaction struct {
	Account       AccountKey      `json:"account"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Result        ResultCode      `json:"result"`
	CreatedAt     time.Time       `json:"created_at"`

	messages map[ResultCode]MessageTemplate
}

// NewTransaction builds an outcome record. Messages may be nil.
func NewTransaction(
	account AccountKey,
	txType TransactionType,
	amount, before, after decimal.Decimal,
	result ResultCode,
	messages map[ResultCode]MessageTemplate,
) *Transaction {
	return &Transaction{
		Account:       account,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Result:        result,
		CreatedAt:     time.Now().UTC(),
		messages:      messages,
	}
}

// Successful reports whether the mutation was applied.
func (t *Transaction) Successful() bool {
	return t.Result == ResultSuccess
}

// Message resolves the template bound to the actual result for a locale.
// Returns the empty string when no template was registered for the result.
func (t *Transaction) Message(audience Audience) string {
	tmpl, ok := t.messages[t.Result]
	if !ok || tmpl.Empty() {
		return ""
	}
	return renderTemplate(tmpl.Resolve(audience.Locale()),
		"{amount}", t.Amount.String(),
		"{balance}", t.BalanceAfter.String(),
		"{currency}", t.Account.CurrencyID,
	)
}

// Inform sends the message matching the result to the audience. No output
// is produced when no template was registered for the result code.
func (t *Transaction) Inform(audience Audience) {
	if text := t.Message(audience); text != "" {
		audience.SendMessage(text)
	}
}

// TransferTransaction is the composed outcome of a paired withdraw+deposit.
// Either both balances moved by exactly the amount, or neither did.
type TransferTransaction struct {
	From   *Transaction    `json:"from,omitempty"`
	To     *Transaction    `json:"to,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Result ResultCode      `json:"result"`

	messages map[ResultCode]MessageTemplate
}

// NewTransferTransaction builds a transfer outcome. From and To are nil for
// rejections that happened before any leg was attempted.
func NewTransferTransaction(
	from, to *Transaction,
	amount decimal.Decimal,
	result ResultCode,
	messages map[ResultCode]MessageTemplate,
) *TransferTransaction {
	return &TransferTransaction{
		From:     from,
		To:       to,
		Amount:   amount,
		Result:   result,
		messages: messages,
	}
}

// Successful reports whether both legs were applied.
func (t *TransferTransaction) Successful() bool {
	return t.Result == ResultSuccess
}

// Inform sends the message matching the overall result to the audience.
func (t *TransferTransaction) Inform(audience Audience) {
	tmpl, ok := t.messages[t.Result]
	if !ok || tmpl.Empty() {
		return
	}
	text := renderTemplate(tmpl.Resolve(audience.Locale()),
		"{amount}", t.Amount.String(),
	)
	if text != "" {
		audience.SendMessage(text)
	}
}

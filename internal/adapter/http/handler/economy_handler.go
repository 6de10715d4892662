package handler

import (
	"net/http"

	"economy-ledger/internal/adapter/http/dto"
	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/service"
	"economy-ledger/pkg/apperror"
	"economy-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EconomyHandler exposes the ledger over HTTP.
type EconomyHandler struct {
	eco *service.Economy
}

// NewEconomyHandler creates a new EconomyHandler.
func NewEconomyHandler(eco *service.Economy) *EconomyHandler {
	return &EconomyHandler{eco: eco}
}

// ListCurrencies handles GET /api/v1/currencies.
func (h *EconomyHandler) ListCurrencies(c *gin.Context) {
	currencies := h.eco.Currencies().Registered()
	out := make([]dto.CurrencyResponse, 0, len(currencies))
	for _, cur := range currencies {
		out = append(out, currencyResponse(cur))
	}
	response.OK(c, out)
}

// PrimaryCurrency handles GET /api/v1/currencies/primary.
func (h *EconomyHandler) PrimaryCurrency(c *gin.Context) {
	response.OK(c, currencyResponse(h.eco.Currencies().Primary()))
}

// GetAccount handles GET /api/v1/accounts/:currency/:owner. It does not
// create accounts: unseen pairs return 404.
func (h *EconomyHandler) GetAccount(c *gin.Context) {
	currency, owner, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	exists, err := h.eco.HasAccount(c.Request.Context(), currency, owner.id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !exists {
		response.Error(c, apperror.ErrAccountNotFound())
		return
	}

	account, err := h.loadAccount(c, currency, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, accountResponse(account))
}

// CreateAccount handles PUT /api/v1/accounts/:currency/:owner, the
// load-or-create entry point. New accounts are seeded with the currency's
// starting balance.
func (h *EconomyHandler) CreateAccount(c *gin.Context) {
	currency, owner, ok := h.resolveTarget(c)
	if !ok {
		return
	}
	account, err := h.loadAccount(c, currency, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, accountResponse(account))
}

// Deposit handles POST /api/v1/accounts/:currency/:owner/deposit.
func (h *EconomyHandler) Deposit(c *gin.Context) {
	h.mutate(c, func(a *service.Account, amount decimal.Decimal) *domain.Transaction {
		return a.Deposit(amount)
	})
}

// Withdraw handles POST /api/v1/accounts/:currency/:owner/withdraw.
func (h *EconomyHandler) Withdraw(c *gin.Context) {
	h.mutate(c, func(a *service.Account, amount decimal.Decimal) *domain.Transaction {
		return a.Withdraw(amount)
	})
}

// Set handles POST /api/v1/accounts/:currency/:owner/set.
func (h *EconomyHandler) Set(c *gin.Context) {
	h.mutate(c, func(a *service.Account, amount decimal.Decimal) *domain.Transaction {
		return a.Set(amount)
	})
}

// Reset handles POST /api/v1/accounts/:currency/:owner/reset.
func (h *EconomyHandler) Reset(c *gin.Context) {
	currency, owner, ok := h.resolveTarget(c)
	if !ok {
		return
	}
	account, err := h.loadAccount(c, currency, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondTransaction(c, account.Reset())
}

// DeleteAccount handles DELETE /api/v1/accounts/:currency/:owner.
func (h *EconomyHandler) DeleteAccount(c *gin.Context) {
	currency, owner, ok := h.resolveTarget(c)
	if !ok {
		return
	}
	if err := h.eco.DeleteAccount(c.Request.Context(), currency, owner.id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Transfer handles POST /api/v1/transfers.
func (h *EconomyHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	currency, ok := h.eco.Currencies().Currency(req.Currency)
	if !ok {
		response.Error(c, apperror.ErrUnknownCurrency(req.Currency))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount(req.Amount))
		return
	}

	from, err := h.loadAccount(c, currency, parseOwner(req.FromOwner))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := h.loadAccount(c, currency, parseOwner(req.ToOwner))
	if err != nil {
		response.Error(c, err)
		return
	}

	result := service.ComposeTransfer().From(from).To(to).Amount(amount).Execute()
	c.JSON(resultStatus(result.Result), gin.H{"data": transferResponse(result)})
}

// Leaderboard handles GET /api/v1/currencies/:currency/leaderboard.
// Virtual accounts are excluded unless include_virtual=true.
func (h *EconomyHandler) Leaderboard(c *gin.Context) {
	currency, ok := h.eco.Currencies().Currency(c.Param("currency"))
	if !ok {
		response.Error(c, apperror.ErrUnknownCurrency(c.Param("currency")))
		return
	}

	includeVirtual := c.Query("include_virtual") == "true"
	records, err := h.eco.Leaderboard(c.Request.Context(), currency, includeVirtual)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.LeaderboardEntry, 0, len(records))
	for i, rec := range records {
		out = append(out, dto.LeaderboardEntry{
			Rank:      i + 1,
			Owner:     rec.Key.OwnerID.String(),
			Balance:   rec.Balance.String(),
			Formatted: currency.Format(rec.Balance),
			Virtual:   rec.Virtual,
		})
	}
	response.OK(c, out)
}

// ownerRef is a parsed :owner path segment: either a player UUID or a
// virtual account name.
type ownerRef struct {
	id      uuid.UUID
	virtual string
}

func parseOwner(raw string) ownerRef {
	if id, err := uuid.Parse(raw); err == nil {
		return ownerRef{id: id}
	}
	return ownerRef{id: domain.VirtualOwnerID(raw), virtual: raw}
}

func (h *EconomyHandler) resolveTarget(c *gin.Context) (domain.Currency, ownerRef, bool) {
	currency, ok := h.eco.Currencies().Currency(c.Param("currency"))
	if !ok {
		response.Error(c, apperror.ErrUnknownCurrency(c.Param("currency")))
		return domain.Currency{}, ownerRef{}, false
	}
	return currency, parseOwner(c.Param("owner")), true
}

func (h *EconomyHandler) loadAccount(c *gin.Context, currency domain.Currency, owner ownerRef) (*service.Account, error) {
	if owner.virtual != "" {
		return h.eco.VirtualAccount(c.Request.Context(), currency, owner.virtual)
	}
	return h.eco.Account(c.Request.Context(), currency, owner.id)
}

func (h *EconomyHandler) mutate(c *gin.Context, op func(*service.Account, decimal.Decimal) *domain.Transaction) {
	currency, owner, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var req dto.MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount(req.Amount))
		return
	}

	account, err := h.loadAccount(c, currency, owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondTransaction(c, op(account, amount))
}

func respondTransaction(c *gin.Context, txn *domain.Transaction) {
	c.JSON(resultStatus(txn.Result), gin.H{"data": transactionResponse(txn)})
}

// resultStatus maps result codes to HTTP statuses. Business-rule
// rejections are transactions, not errors, so they keep the transaction
// body and only change the status.
func resultStatus(result domain.ResultCode) int {
	switch result {
	case domain.ResultSuccess:
		return http.StatusOK
	case domain.ResultNotEnoughFunds:
		return http.StatusPaymentRequired
	case domain.ResultInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func currencyResponse(cur domain.Currency) dto.CurrencyResponse {
	return dto.CurrencyResponse{
		ID:            cur.ID,
		DisplayName:   cur.DisplayName,
		PluralName:    cur.PluralName,
		Symbol:        cur.Symbol,
		DecimalPlaces: cur.DecimalPlaces,
		Primary:       cur.Primary,
		Transferable:  string(cur.Transferable),
	}
}

func accountResponse(a *service.Account) dto.AccountResponse {
	balance := a.Balance()
	return dto.AccountResponse{
		Currency:  a.Currency().ID,
		Owner:     a.Key().OwnerID.String(),
		Balance:   balance.String(),
		Formatted: a.Currency().Format(balance),
		Virtual:   a.Virtual(),
	}
}

func transactionResponse(txn *domain.Transaction) *dto.TransactionResponse {
	if txn == nil {
		return nil
	}
	return &dto.TransactionResponse{
		Currency:      txn.Account.CurrencyID,
		Owner:         txn.Account.OwnerID.String(),
		Type:          string(txn.Type),
		Amount:        txn.Amount.String(),
		BalanceBefore: txn.BalanceBefore.String(),
		BalanceAfter:  txn.BalanceAfter.String(),
		Result:        string(txn.Result),
	}
}

func transferResponse(tr *domain.TransferTransaction) dto.TransferResponse {
	return dto.TransferResponse{
		Result: string(tr.Result),
		Amount: tr.Amount.String(),
		From:   transactionResponse(tr.From),
		To:     transactionResponse(tr.To),
	}
}

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"economy-ledger/internal/adapter/http/dto"
	"economy-ledger/internal/adapter/storage/memory"
	"economy-ledger/internal/core/domain"
	"economy-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	provider, err := service.NewCurrencyProvider([]domain.Currency{
		{
			ID:              "dollar",
			DisplayName:     "Dollar",
			PluralName:      "Dollars",
			Symbol:          "$",
			DecimalPlaces:   2,
			StartingBalance: decimal.NewFromInt(500),
			Transferable:    domain.TransferAllowed,
			Primary:         true,
			SymbolPosition:  domain.SymbolBefore,
		},
		{
			ID:              "gem",
			DisplayName:     "Gem",
			PluralName:      "Gems",
			Symbol:          "*",
			Transferable:    domain.TransferDenied,
			SymbolPosition:  domain.SymbolAfter,
			StartingBalance: decimal.Zero,
		},
	})
	require.NoError(t, err)

	policy := service.RestrictionPolicy{
		Enabled:               true,
		MinBalance:            decimal.Zero,
		MaxBalance:            decimal.NewFromInt(1_000_000),
		AllowTransferOnUnset:  true,
		MaxLeaderboardEntries: 10,
	}

	eco := service.NewEconomy(provider, policy, memory.NewAccountStore(), nil, zerolog.Nop())
	t.Cleanup(eco.Close)

	return SetupRouter(RouterDeps{Economy: eco, Logger: zerolog.Nop()})
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataField[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return envelope.Data
}

func TestListCurrencies(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/currencies", nil)

	require.Equal(t, http.StatusOK, w.Code)
	currencies := dataField[[]dto.CurrencyResponse](t, w)
	require.Len(t, currencies, 2)
	assert.Equal(t, "dollar", currencies[0].ID)
	assert.True(t, currencies[0].Primary)
}

func TestPrimaryCurrency(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/currencies/primary", nil)

	require.Equal(t, http.StatusOK, w.Code)
	cur := dataField[dto.CurrencyResponse](t, w)
	assert.Equal(t, "dollar", cur.ID)
}

func TestCreateAccount_SeedsStartingBalance(t *testing.T) {
	r := newTestRouter(t)
	owner := uuid.New()

	w := do(r, http.MethodPut, "/api/v1/accounts/dollar/"+owner.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	acct := dataField[dto.AccountResponse](t, w)
	assert.Equal(t, "500", acct.Balance)
	assert.Equal(t, "$500.00", acct.Formatted)
	assert.False(t, acct.Virtual)
}

func TestCreateAccount_VirtualName(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPut, "/api/v1/accounts/dollar/town-bank", nil)

	require.Equal(t, http.StatusOK, w.Code)
	acct := dataField[dto.AccountResponse](t, w)
	assert.True(t, acct.Virtual)
	assert.Equal(t, domain.VirtualOwnerID("town-bank").String(), acct.Owner)
}

func TestGetAccount_NotFound(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/accounts/dollar/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "LED_002")
}

func TestGetAccount_UnknownCurrency(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/accounts/doubloon/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "LED_001")
}

func TestDeposit(t *testing.T) {
	r := newTestRouter(t)
	path := "/api/v1/accounts/dollar/" + uuid.NewString()

	w := do(r, http.MethodPost, path+"/deposit", dto.MutationRequest{Amount: "250"})

	require.Equal(t, http.StatusOK, w.Code)
	txn := dataField[dto.TransactionResponse](t, w)
	assert.Equal(t, "DEPOSIT", txn.Type)
	assert.Equal(t, "SUCCESS", txn.Result)
	assert.Equal(t, "500", txn.BalanceBefore)
	assert.Equal(t, "750", txn.BalanceAfter)
}

func TestDeposit_NegativeAmountIsInvalidResult(t *testing.T) {
	r := newTestRouter(t)
	path := "/api/v1/accounts/dollar/" + uuid.NewString()

	w := do(r, http.MethodPost, path+"/deposit", dto.MutationRequest{Amount: "-5"})

	// Business rejection: still a transaction body, mapped to 400.
	require.Equal(t, http.StatusBadRequest, w.Code)
	txn := dataField[dto.TransactionResponse](t, w)
	assert.Equal(t, "INVALID", txn.Result)
	assert.Equal(t, "500", txn.BalanceAfter)
}

func TestDeposit_UnparsableAmount(t *testing.T) {
	r := newTestRouter(t)
	path := "/api/v1/accounts/dollar/" + uuid.NewString()

	w := do(r, http.MethodPost, path+"/deposit", dto.MutationRequest{Amount: "lots"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LED_004")
}

func TestWithdraw_NotEnoughFunds(t *testing.T) {
	r := newTestRouter(t)
	path := "/api/v1/accounts/dollar/" + uuid.NewString()

	w := do(r, http.MethodPost, path+"/withdraw", dto.MutationRequest{Amount: "1000"})

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	txn := dataField[dto.TransactionResponse](t, w)
	assert.Equal(t, "NOT_ENOUGH_FUNDS", txn.Result)
	assert.Equal(t, "500", txn.BalanceAfter)
}

func TestSetAndReset(t *testing.T) {
	r := newTestRouter(t)
	path := "/api/v1/accounts/dollar/" + uuid.NewString()

	w := do(r, http.MethodPost, path+"/set", dto.MutationRequest{Amount: "1.00"})
	require.Equal(t, http.StatusOK, w.Code)
	txn := dataField[dto.TransactionResponse](t, w)
	assert.Equal(t, "SET", txn.Type)
	assert.Equal(t, "1", txn.BalanceAfter)

	w = do(r, http.MethodPost, path+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	txn = dataField[dto.TransactionResponse](t, w)
	assert.Equal(t, "RESET", txn.Type)
	assert.Equal(t, "500", txn.BalanceAfter)
}

func TestDeleteAccount(t *testing.T) {
	r := newTestRouter(t)
	owner := uuid.NewString()
	path := "/api/v1/accounts/dollar/" + owner

	do(r, http.MethodPut, path, nil)

	w := do(r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransfer(t *testing.T) {
	r := newTestRouter(t)
	from, to := uuid.NewString(), uuid.NewString()

	w := do(r, http.MethodPost, "/api/v1/transfers", dto.TransferRequest{
		Currency:  "dollar",
		FromOwner: from,
		ToOwner:   to,
		Amount:    "250",
	})

	require.Equal(t, http.StatusOK, w.Code)
	tr := dataField[dto.TransferResponse](t, w)
	assert.Equal(t, "SUCCESS", tr.Result)
	require.NotNil(t, tr.From)
	require.NotNil(t, tr.To)
	assert.Equal(t, "250", tr.From.BalanceAfter)
	assert.Equal(t, "750", tr.To.BalanceAfter)
}

func TestTransfer_NotEnoughFunds(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/transfers", dto.TransferRequest{
		Currency:  "dollar",
		FromOwner: uuid.NewString(),
		ToOwner:   uuid.NewString(),
		Amount:    "5000",
	})

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	tr := dataField[dto.TransferResponse](t, w)
	assert.Equal(t, "NOT_ENOUGH_FUNDS", tr.Result)
	require.NotNil(t, tr.From)
	assert.Equal(t, "500", tr.From.BalanceAfter)
	assert.Nil(t, tr.To)
}

func TestTransfer_DeniedCurrency(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/transfers", dto.TransferRequest{
		Currency:  "gem",
		FromOwner: uuid.NewString(),
		ToOwner:   uuid.NewString(),
		Amount:    "1",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	tr := dataField[dto.TransferResponse](t, w)
	assert.Equal(t, "INVALID", tr.Result)
}

func TestTransfer_MissingFields(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/transfers", map[string]string{"currency": "dollar"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LED_004")
}

func TestLeaderboard(t *testing.T) {
	r := newTestRouter(t)

	rich, poor := uuid.NewString(), uuid.NewString()
	do(r, http.MethodPost, "/api/v1/accounts/dollar/"+rich+"/set", dto.MutationRequest{Amount: "900"})
	do(r, http.MethodPost, "/api/v1/accounts/dollar/"+poor+"/set", dto.MutationRequest{Amount: "10"})
	do(r, http.MethodPost, "/api/v1/accounts/dollar/town-bank/set", dto.MutationRequest{Amount: "9999"})

	w := do(r, http.MethodGet, "/api/v1/currencies/dollar/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := dataField[[]dto.LeaderboardEntry](t, w)
	require.Len(t, board, 2, "virtual accounts excluded by default")
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, rich, board[0].Owner)
	assert.Equal(t, "$900.00", board[0].Formatted)

	w = do(r, http.MethodGet, "/api/v1/currencies/dollar/leaderboard?include_virtual=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board = dataField[[]dto.LeaderboardEntry](t, w)
	require.Len(t, board, 3)
	assert.True(t, board[0].Virtual)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

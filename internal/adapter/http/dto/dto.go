package dto

// MutationRequest is the request body for deposit, withdraw, and set.
// The amount is a decimal string; values the ledger considers invalid
// (e.g. negative amounts) still parse and come back as a transaction with
// an INVALID result rather than a 400.
type MutationRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// TransferRequest is the request body for a transfer between two owners.
type TransferRequest struct {
	Currency  string `json:"currency" binding:"required"`
	FromOwner string `json:"from_owner" binding:"required"`
	ToOwner   string `json:"to_owner" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// AccountResponse is the response body for account queries.
type AccountResponse struct {
	Currency  string `json:"currency"`
	Owner     string `json:"owner"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
	Virtual   bool   `json:"virtual"`
}

// TransactionResponse is the response body for mutation outcomes.
type TransactionResponse struct {
	Currency      string `json:"currency"`
	Owner         string `json:"owner"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	BalanceBefore string `json:"balance_before"`
	BalanceAfter  string `json:"balance_after"`
	Result        string `json:"result"`
}

// TransferResponse is the response body for transfer outcomes.
type TransferResponse struct {
	Result string               `json:"result"`
	Amount string               `json:"amount"`
	From   *TransactionResponse `json:"from,omitempty"`
	To     *TransactionResponse `json:"to,omitempty"`
}

// CurrencyResponse is the response body for currency queries.
type CurrencyResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	PluralName    string `json:"plural_name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int32  `json:"decimal_places"`
	Primary       bool   `json:"primary"`
	Transferable  string `json:"transferable"`
}

// LeaderboardEntry is one row of the leaderboard response.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	Owner     string `json:"owner"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
	Virtual   bool   `json:"virtual"`
}

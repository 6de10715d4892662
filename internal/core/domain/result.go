package domain

// ResultCode classifies the outcome of a balance mutation.
type ResultCode string

const (
	ResultSuccess        ResultCode = "SUCCESS"
	ResultNotEnoughFunds ResultCode = "NOT_ENOUGH_FUNDS"
	ResultInvalid        ResultCode = "INVALID"
	ResultFailed         ResultCode = "FAILED"
)

// TransactionType represents the kind of balance mutation.
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypeWithdraw TransactionType = "WITHDRAW"
	TransactionTypeSet      TransactionType = "SET"
	TransactionTypeReset    TransactionType = "RESET"
)

package domain

import "time"

// Ledger actions recorded on coin transactions.
const (
	CoinActionPurchase = "purchase"
	CoinActionAdd      = "add"
	CoinActionSubtract = "subtract"
	CoinActionSet      = "set"
)

// CoinTransaction is an append-only record of a single balance change.
// BalanceAfter is the account balance as committed together with the change.
type CoinTransaction struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Action       string    `json:"action"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}

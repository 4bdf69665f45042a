package domain

import "time"

// User represents a platform account. Coins holds the integer balance that
// only ledger operations may mutate.
type User struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      []byte
	Coins             int
	Admin             bool
	BillingCustomerID string
	CreatedAt         time.Time
}

package domain

import "time"

// Subscription statuses.
const (
	SubscriptionActive   = "active"
	SubscriptionCanceled = "canceled"
)

// Subscription is a time-bounded entitlement. A user has at most one
// active subscription; creating a new one supersedes the previous.
type Subscription struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Plan      string     `json:"plan"`
	Status    string     `json:"status"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	CreatedAt time.Time  `json:"createdAt"`
}

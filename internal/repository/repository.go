package repository

import (
	"context"
	"time"

	"github.com/pagecraft/api/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	SetBillingCustomerID(ctx context.Context, userID, customerID string) error
}

// LedgerRepository mutates coin balances. Every mutation is a single
// transaction that updates the balance and appends the paired
// coin_transactions row; none of the methods read-then-write in
// application code.
type LedgerRepository interface {
	// Credit unconditionally increments the balance and returns the new value.
	Credit(ctx context.Context, userID string, amount int, action string) (int, error)
	// Debit decrements only while the balance stays non-negative. It returns
	// ErrInsufficientFunds when the guard rejects the update and ErrNotFound
	// when the account does not exist.
	Debit(ctx context.Context, userID string, amount int, action string) (int, error)
	// SetBalance overwrites the balance.
	SetBalance(ctx context.Context, userID string, amount int) (int, error)
	GetBalance(ctx context.Context, userID string) (int, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]domain.CoinTransaction, error)
	CountTransactions(ctx context.Context, userID string) (int, error)
}

// SubscriptionRepository persists subscription lifecycle state.
type SubscriptionRepository interface {
	// ReplaceActive cancels any active subscription for the user (stamping
	// its end date with the new subscription's start date) and inserts the
	// new active record, all in one transaction.
	ReplaceActive(ctx context.Context, sub *domain.Subscription) error
	GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error)
	// MarkCanceled flips a non-canceled subscription to canceled. It returns
	// ErrNotFound when the row is missing or already canceled.
	MarkCanceled(ctx context.Context, id string, at time.Time) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string, limit, offset int) ([]domain.Subscription, error)
	CountSubscriptions(ctx context.Context, userID string) (int, error)
}

// PaletteRepository persists saved palettes.
type PaletteRepository interface {
	CreatePalette(ctx context.Context, palette *domain.Palette) error
	GetPaletteByID(ctx context.Context, id string) (*domain.Palette, error)
	DeletePalette(ctx context.Context, id string) error
	ListPalettes(ctx context.Context, userID string, limit, offset int) ([]domain.Palette, error)
	CountPalettes(ctx context.Context, userID string) (int, error)
}

// TemplateQuery filters and orders the template catalogue.
type TemplateQuery struct {
	Search    string
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
}

// TemplateRepository reads the template catalogue.
type TemplateRepository interface {
	ListTemplates(ctx context.Context, query TemplateQuery) ([]domain.Template, error)
	CountTemplates(ctx context.Context, search string) (int, error)
	GetTemplateByID(ctx context.Context, id string) (*domain.Template, error)
}

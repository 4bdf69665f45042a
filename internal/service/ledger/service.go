// Package ledger owns all coin balance mutations and their audit trail.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/pkg/config"
)

// History page bounds.
const (
	defaultHistorySize = 10
	maxHistorySize     = 100
)

// Service validates ledger requests and delegates the atomic mutation to
// the repository. Balances are integers throughout.
type Service struct {
	ledger repository.LedgerRepository
	logger *slog.Logger
	cfg    config.Config
}

// New returns a ledger service.
func New(ledger repository.LedgerRepository, logger *slog.Logger, cfg config.Config) Service {
	return Service{ledger: ledger, logger: logger, cfg: cfg}
}

// Purchase credits coins bought by the user. Amount is capped per purchase
// by configuration.
func (s Service) Purchase(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 || amount > s.cfg.MaxCoinPurchase {
		return 0, apperr.Validation(fmt.Sprintf("amount must be between 1 and %d", s.cfg.MaxCoinPurchase))
	}
	balance, err := s.ledger.Credit(ctx, userID, amount, domain.CoinActionPurchase)
	if err != nil {
		return 0, translate(err)
	}
	s.logger.Info("coins purchased", "user_id", userID, "amount", amount, "balance", balance)
	return balance, nil
}

// Update applies a generic balance mutation: add, subtract or set.
// Subtract re-checks the balance inside the guarded repository update, so
// concurrent subtractions can never drive the balance negative.
func (s Service) Update(ctx context.Context, userID, action string, amount int) (int, error) {
	if amount < 0 {
		return 0, apperr.Validation("amount must be a non-negative integer")
	}
	var (
		balance int
		err     error
	)
	switch action {
	case domain.CoinActionAdd:
		balance, err = s.ledger.Credit(ctx, userID, amount, domain.CoinActionAdd)
	case domain.CoinActionSubtract:
		balance, err = s.ledger.Debit(ctx, userID, amount, domain.CoinActionSubtract)
	case domain.CoinActionSet:
		balance, err = s.ledger.SetBalance(ctx, userID, amount)
	default:
		return 0, apperr.Validation("action must be add, subtract or set")
	}
	if err != nil {
		return 0, translate(err)
	}
	s.logger.Info("coins updated", "user_id", userID, "action", action, "amount", amount, "balance", balance)
	return balance, nil
}

// Balance reads the current coin balance.
func (s Service) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return 0, translate(err)
	}
	return balance, nil
}

// History returns the user's transaction log, newest first.
func (s Service) History(ctx context.Context, userID string, page, pageSize int) ([]domain.CoinTransaction, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxHistorySize {
		pageSize = defaultHistorySize
	}
	total, err := s.ledger.CountTransactions(ctx, userID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	entries, err := s.ledger.ListTransactions(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return entries, domain.NewPagination(total, page, pageSize), nil
}

// translate maps repository sentinels onto the error taxonomy.
func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, "user not found", err)
	case errors.Is(err, repository.ErrInsufficientFunds):
		return apperr.Wrap(apperr.KindInsufficientFunds, "insufficient coins", err)
	default:
		return err
	}
}

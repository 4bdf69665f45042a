package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/pkg/config"
)

type stubLedgerRepository struct {
	balances map[string]int
	log      []domain.CoinTransaction
}

func (s *stubLedgerRepository) Credit(ctx context.Context, userID string, amount int, action string) (int, error) {
	balance, ok := s.balances[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	balance += amount
	s.balances[userID] = balance
	s.record(userID, action, amount, balance)
	return balance, nil
}

func (s *stubLedgerRepository) Debit(ctx context.Context, userID string, amount int, action string) (int, error) {
	balance, ok := s.balances[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if balance < amount {
		return 0, repository.ErrInsufficientFunds
	}
	balance -= amount
	s.balances[userID] = balance
	s.record(userID, action, amount, balance)
	return balance, nil
}

func (s *stubLedgerRepository) SetBalance(ctx context.Context, userID string, amount int) (int, error) {
	if _, ok := s.balances[userID]; !ok {
		return 0, repository.ErrNotFound
	}
	s.balances[userID] = amount
	s.record(userID, domain.CoinActionSet, amount, amount)
	return amount, nil
}

func (s *stubLedgerRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	balance, ok := s.balances[userID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return balance, nil
}

func (s *stubLedgerRepository) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]domain.CoinTransaction, error) {
	var out []domain.CoinTransaction
	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].UserID == userID {
			out = append(out, s.log[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubLedgerRepository) CountTransactions(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, tx := range s.log {
		if tx.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *stubLedgerRepository) record(userID, action string, amount, balance int) {
	s.log = append(s.log, domain.CoinTransaction{
		UserID:       userID,
		Action:       action,
		Amount:       amount,
		BalanceAfter: balance,
		CreatedAt:    time.Now(),
	})
}

func newTestService(repo *stubLedgerRepository) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return Service{ledger: repo, logger: log, cfg: config.Config{MaxCoinPurchase: 1000}}
}

func TestPurchaseCreditsBalance(t *testing.T) {
	repo := &stubLedgerRepository{balances: map[string]int{"user-1": 40}}
	svc := newTestService(repo)

	balance, err := svc.Purchase(context.Background(), "user-1", 60)
	if err != nil {
		t.Fatalf("Purchase returned error: %v", err)
	}
	if balance != 100 {
		t.Fatalf("expected balance 100, got %d", balance)
	}
	if len(repo.log) != 1 || repo.log[0].Action != domain.CoinActionPurchase {
		t.Fatalf("expected one purchase transaction, got %+v", repo.log)
	}
}

func TestPurchaseRejectsOutOfRangeAmounts(t *testing.T) {
	repo := &stubLedgerRepository{balances: map[string]int{"user-1": 0}}
	svc := newTestService(repo)

	for _, amount := range []int{0, -5, 1001} {
		if _, err := svc.Purchase(context.Background(), "user-1", amount); apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("amount %d: expected validation error, got %v", amount, err)
		}
	}
	if len(repo.log) != 0 {
		t.Fatalf("rejected purchases must not write transactions, got %d", len(repo.log))
	}
}

func TestUpdateActions(t *testing.T) {
	repo := &stubLedgerRepository{balances: map[string]int{"user-1": 50}}
	svc := newTestService(repo)
	ctx := context.Background()

	balance, err := svc.Update(ctx, "user-1", domain.CoinActionAdd, 25)
	if err != nil || balance != 75 {
		t.Fatalf("add: got (%d, %v), want (75, nil)", balance, err)
	}
	balance, err = svc.Update(ctx, "user-1", domain.CoinActionSubtract, 30)
	if err != nil || balance != 45 {
		t.Fatalf("subtract: got (%d, %v), want (45, nil)", balance, err)
	}
	balance, err = svc.Update(ctx, "user-1", domain.CoinActionSet, 7)
	if err != nil || balance != 7 {
		t.Fatalf("set: got (%d, %v), want (7, nil)", balance, err)
	}
}

func TestUpdateRejectsNegativeAmountAndUnknownAction(t *testing.T) {
	svc := newTestService(&stubLedgerRepository{balances: map[string]int{"user-1": 10}})

	if _, err := svc.Update(context.Background(), "user-1", domain.CoinActionAdd, -1); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for negative amount, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "user-1", "multiply", 2); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for unknown action, got %v", err)
	}
}

func TestUpdateAllowsZeroAmount(t *testing.T) {
	repo := &stubLedgerRepository{balances: map[string]int{"user-1": 10}}
	svc := newTestService(repo)

	balance, err := svc.Update(context.Background(), "user-1", domain.CoinActionAdd, 0)
	if err != nil {
		t.Fatalf("zero-amount add returned error: %v", err)
	}
	if balance != 10 {
		t.Fatalf("expected balance unchanged at 10, got %d", balance)
	}
	// Zero mutations are still recorded in the transaction log.
	if len(repo.log) != 1 || repo.log[0].Amount != 0 {
		t.Fatalf("expected one zero-amount transaction row, got %+v", repo.log)
	}
}

func TestSubtractBeyondBalanceIsInsufficientFunds(t *testing.T) {
	svc := newTestService(&stubLedgerRepository{balances: map[string]int{"user-1": 10}})

	_, err := svc.Update(context.Background(), "user-1", domain.CoinActionSubtract, 11)
	if apperr.KindOf(err) != apperr.KindInsufficientFunds {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
}

func TestUnknownUserIsNotFound(t *testing.T) {
	svc := newTestService(&stubLedgerRepository{balances: map[string]int{}})

	if _, err := svc.Balance(context.Background(), "ghost"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := svc.Purchase(context.Background(), "ghost", 10); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestHistoryPaginates(t *testing.T) {
	repo := &stubLedgerRepository{balances: map[string]int{"user-1": 0}}
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := svc.Update(ctx, "user-1", domain.CoinActionAdd, 1); err != nil {
			t.Fatalf("seed update %d: %v", i, err)
		}
	}

	entries, pagination, err := svc.History(ctx, "user-1", 2, 10)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries on page 2, got %d", len(entries))
	}
	if pagination.Total != 15 || pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination: %+v", pagination)
	}
}

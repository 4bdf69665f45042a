// Package subscription manages the subscription lifecycle: at most one
// active subscription per user, superseded atomically on renewal.
package subscription

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/internal/service/billing"
	"github.com/pagecraft/api/pkg/config"
)

// List page bounds.
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Service orchestrates subscription state transitions.
type Service struct {
	subs    repository.SubscriptionRepository
	users   repository.UserRepository
	gateway billing.Gateway
	logger  *slog.Logger
	cfg     config.Config
}

// New constructs a Service.
func New(subs repository.SubscriptionRepository, users repository.UserRepository, gateway billing.Gateway, logger *slog.Logger, cfg config.Config) Service {
	return Service{subs: subs, users: users, gateway: gateway, logger: logger, cfg: cfg}
}

// Subscribe creates a new active subscription, canceling any prior active
// one in the same transaction. When a billing provider is configured the
// external customer and payment method calls run first; a provider failure
// leaves local state untouched.
func (s Service) Subscribe(ctx context.Context, userID, plan, paymentMethodID string) (*domain.Subscription, error) {
	duration, ok := s.cfg.PlanDurations()[plan]
	if !ok {
		return nil, apperr.Validation("invalid subscriptionType")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	if s.gateway != nil && s.gateway.Enabled() {
		if paymentMethodID == "" {
			return nil, apperr.Validation("paymentMethodId is required")
		}
		customerID, err := s.gateway.EnsureCustomer(ctx, user)
		if err != nil {
			return nil, err
		}
		if customerID != user.BillingCustomerID {
			if err := s.users.SetBillingCustomerID(ctx, userID, customerID); err != nil {
				return nil, err
			}
		}
		if err := s.gateway.AttachPaymentMethod(ctx, customerID, paymentMethodID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	end := now.Add(duration)
	sub := &domain.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      plan,
		Status:    domain.SubscriptionActive,
		StartDate: now,
		EndDate:   &end,
		CreatedAt: now,
	}
	if err := s.subs.ReplaceActive(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("another subscription was activated concurrently")
		}
		return nil, err
	}
	s.logger.Info("subscription created", "user_id", userID, "plan", plan, "subscription_id", sub.ID)
	return sub, nil
}

// Cancel transitions a subscription to canceled. Only the owner or an
// admin may cancel, and canceling twice is a conflict.
func (s Service) Cancel(ctx context.Context, userID, subscriptionID string, admin bool) (*domain.Subscription, error) {
	if _, err := uuid.Parse(subscriptionID); err != nil {
		return nil, apperr.Validation("invalid subscription ID")
	}
	sub, err := s.subs.GetSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("subscription not found")
		}
		return nil, err
	}
	if sub.UserID != userID && !admin {
		return nil, apperr.Forbidden("subscription belongs to another user")
	}
	if sub.Status == domain.SubscriptionCanceled {
		return nil, apperr.Conflict("subscription already canceled")
	}
	canceled, err := s.subs.MarkCanceled(ctx, subscriptionID, time.Now().UTC())
	if err != nil {
		// The guard matched no row: a concurrent cancel won.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Conflict("subscription already canceled")
		}
		return nil, err
	}
	s.logger.Info("subscription canceled", "subscription_id", subscriptionID, "user_id", sub.UserID)
	return canceled, nil
}

// List returns subscriptions newest first. Admins see every user's
// subscriptions; everyone else sees their own.
func (s Service) List(ctx context.Context, userID string, admin bool, page, pageSize int) ([]domain.Subscription, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	scope := userID
	if admin {
		scope = ""
	}
	total, err := s.subs.CountSubscriptions(ctx, scope)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	subs, err := s.subs.ListSubscriptions(ctx, scope, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return subs, domain.NewPagination(total, page, pageSize), nil
}

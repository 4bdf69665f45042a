// Package billing integrates the external payment provider. Subscription
// writes are gated on these calls: a provider failure must leave local
// state untouched.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"log/slog"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/pkg/config"
)

// Gateway abstracts the payment provider.
type Gateway interface {
	// Enabled reports whether a provider is configured. When false the
	// subscription flow skips billing entirely.
	Enabled() bool
	// EnsureCustomer returns the provider customer ID for the user,
	// creating one when the user has none.
	EnsureCustomer(ctx context.Context, user *domain.User) (string, error)
	// AttachPaymentMethod registers a payment method as the customer's
	// default.
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
}

// HTTPGateway talks to the provider's REST API.
type HTTPGateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewHTTPGateway constructs a gateway from configuration. A gateway with an
// empty base URL is valid and reports Enabled() == false.
func NewHTTPGateway(cfg config.Config, logger *slog.Logger) *HTTPGateway {
	return &HTTPGateway{
		client:  &http.Client{Timeout: cfg.BillingTimeout},
		baseURL: strings.TrimRight(cfg.BillingAPIURL, "/"),
		apiKey:  cfg.BillingAPIKey,
		logger:  logger,
	}
}

// Enabled reports whether the provider is configured.
func (g *HTTPGateway) Enabled() bool {
	return g.baseURL != ""
}

// EnsureCustomer reuses the stored customer reference or creates a new one.
func (g *HTTPGateway) EnsureCustomer(ctx context.Context, user *domain.User) (string, error) {
	if user.BillingCustomerID != "" {
		return user.BillingCustomerID, nil
	}
	payload := map[string]string{
		"email":   user.Email,
		"user_id": user.ID,
	}
	var response struct {
		ID string `json:"id"`
	}
	if err := g.post(ctx, "/v1/customers", payload, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", apperr.New(apperr.KindUpstream, "billing provider returned no customer id")
	}
	g.logger.Info("billing customer created", "user_id", user.ID)
	return response.ID, nil
}

// AttachPaymentMethod sets the default payment method on the customer.
func (g *HTTPGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	payload := map[string]string{
		"customer":       customerID,
		"payment_method": paymentMethodID,
	}
	return g.post(ctx, "/v1/payment_methods/attach", payload, nil)
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "billing provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn("billing provider rejected request", "path", path, "status", resp.StatusCode, "body", string(snippet))
		return apperr.New(apperr.KindUpstream, fmt.Sprintf("billing provider returned status %d", resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "billing provider returned malformed response", err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository         = (*Repository)(nil)
	_ repository.LedgerRepository       = (*Repository)(nil)
	_ repository.SubscriptionRepository = (*Repository)(nil)
	_ repository.PaletteRepository      = (*Repository)(nil)
	_ repository.TemplateRepository     = (*Repository)(nil)
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, username, email, password_hash, coins, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Coins, user.Admin, user.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, username, email, password_hash, coins, is_admin, COALESCE(billing_customer_id, ''), created_at
		FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, username, email, password_hash, coins, is_admin, COALESCE(billing_customer_id, ''), created_at
		FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// UpdateUser persists mutable profile fields.
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	const query = `UPDATE users SET username = $2, email = $3, password_hash = $4 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetBillingCustomerID stores the external billing customer reference.
func (r *Repository) SetBillingCustomerID(ctx context.Context, userID, customerID string) error {
	const query = `UPDATE users SET billing_customer_id = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, userID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Coins, &u.Admin, &u.BillingCustomerID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Credit atomically increments the balance and appends the paired
// transaction row. The increment and the append commit or roll back
// together.
func (r *Repository) Credit(ctx context.Context, userID string, amount int, action string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const update = `UPDATE users SET coins = coins + $2 WHERE id = $1 RETURNING coins`
	var balance int
	if err := tx.QueryRow(ctx, update, userID, amount).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	if err := appendTransaction(ctx, tx, userID, action, amount, balance); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

// Debit decrements the balance only when it covers the amount. The floor
// check lives in the UPDATE predicate, so concurrent debits cannot interleave
// into a negative balance.
func (r *Repository) Debit(ctx context.Context, userID string, amount int, action string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const update = `UPDATE users SET coins = coins - $2 WHERE id = $1 AND coins >= $2 RETURNING coins`
	var balance int
	if err := tx.QueryRow(ctx, update, userID, amount).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, r.classifyDebitMiss(ctx, userID)
		}
		return 0, err
	}
	if err := appendTransaction(ctx, tx, userID, action, amount, balance); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

// classifyDebitMiss distinguishes a missing account from an insufficient
// balance after the guarded update matched no row.
func (r *Repository) classifyDebitMiss(ctx context.Context, userID string) error {
	const exists = `SELECT 1 FROM users WHERE id = $1`
	var one int
	if err := r.pool.QueryRow(ctx, exists, userID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return repository.ErrInsufficientFunds
}

// SetBalance overwrites the balance and records the set action.
func (r *Repository) SetBalance(ctx context.Context, userID string, amount int) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	const update = `UPDATE users SET coins = $2 WHERE id = $1 RETURNING coins`
	var balance int
	if err := tx.QueryRow(ctx, update, userID, amount).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	if err := appendTransaction(ctx, tx, userID, domain.CoinActionSet, amount, balance); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func appendTransaction(ctx context.Context, tx pgx.Tx, userID, action string, amount, balance int) error {
	const insert = `INSERT INTO coin_transactions (user_id, action, amount, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.Exec(ctx, insert, userID, action, amount, balance, time.Now().UTC())
	return err
}

// GetBalance reads the current balance.
func (r *Repository) GetBalance(ctx context.Context, userID string) (int, error) {
	const query = `SELECT coins FROM users WHERE id = $1`
	var balance int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

// ListTransactions returns the newest transactions first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]domain.CoinTransaction, error) {
	const query = `SELECT id, user_id, action, amount, balance_after, created_at
		FROM coin_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.CoinTransaction, 0)
	for rows.Next() {
		var t domain.CoinTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Action, &t.Amount, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

// CountTransactions counts a user's transaction records.
func (r *Repository) CountTransactions(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(1) FROM coin_transactions WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReplaceActive supersedes any active subscription and inserts the new one
// in a single transaction. The superseded row's end date is the new row's
// start date.
func (r *Repository) ReplaceActive(ctx context.Context, sub *domain.Subscription) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const supersede = `UPDATE subscriptions SET status = $3, end_date = $2
		WHERE user_id = $1 AND status = $4`
	if _, err := tx.Exec(ctx, supersede, sub.UserID, sub.StartDate, domain.SubscriptionCanceled, domain.SubscriptionActive); err != nil {
		return err
	}

	const insert = `INSERT INTO subscriptions (id, user_id, plan, status, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, insert, sub.ID, sub.UserID, sub.Plan, sub.Status, sub.StartDate, sub.EndDate, sub.CreatedAt); err != nil {
		// A concurrent subscribe can slip past the supersede update and
		// trip the one-active-per-user index.
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return tx.Commit(ctx)
}

// GetSubscriptionByID fetches one subscription.
func (r *Repository) GetSubscriptionByID(ctx context.Context, id string) (*domain.Subscription, error) {
	const query = `SELECT id, user_id, plan, status, start_date, end_date, created_at
		FROM subscriptions WHERE id = $1`
	var s domain.Subscription
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// MarkCanceled cancels a subscription with a guard on its current status.
func (r *Repository) MarkCanceled(ctx context.Context, id string, at time.Time) (*domain.Subscription, error) {
	const query = `UPDATE subscriptions SET status = $2, end_date = $3
		WHERE id = $1 AND status <> $2
		RETURNING id, user_id, plan, status, start_date, end_date, created_at`
	var s domain.Subscription
	err := r.pool.QueryRow(ctx, query, id, domain.SubscriptionCanceled, at).
		Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListSubscriptions returns subscriptions newest first. An empty userID
// lists every user's subscriptions.
func (r *Repository) ListSubscriptions(ctx context.Context, userID string, limit, offset int) ([]domain.Subscription, error) {
	query := `SELECT id, user_id, plan, status, start_date, end_date, created_at
		FROM subscriptions`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]domain.Subscription, 0)
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status, &s.StartDate, &s.EndDate, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// CountSubscriptions counts subscriptions, optionally scoped to a user.
func (r *Repository) CountSubscriptions(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(1) FROM subscriptions`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreatePalette inserts a saved palette.
func (r *Repository) CreatePalette(ctx context.Context, palette *domain.Palette) error {
	const query = `INSERT INTO palettes (id, user_id, name, colors, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, palette.ID, palette.UserID, palette.Name, palette.Colors, palette.CreatedAt)
	return err
}

// GetPaletteByID fetches a saved palette.
func (r *Repository) GetPaletteByID(ctx context.Context, id string) (*domain.Palette, error) {
	const query = `SELECT id, user_id, name, colors, created_at FROM palettes WHERE id = $1`
	var p domain.Palette
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Name, &p.Colors, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// DeletePalette removes a saved palette.
func (r *Repository) DeletePalette(ctx context.Context, id string) error {
	const query = `DELETE FROM palettes WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListPalettes returns saved palettes newest first. An empty userID lists
// all users' palettes.
func (r *Repository) ListPalettes(ctx context.Context, userID string, limit, offset int) ([]domain.Palette, error) {
	query := `SELECT id, user_id, name, colors, created_at FROM palettes`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	palettes := make([]domain.Palette, 0)
	for rows.Next() {
		var p domain.Palette
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Colors, &p.CreatedAt); err != nil {
			return nil, err
		}
		palettes = append(palettes, p)
	}
	return palettes, rows.Err()
}

// CountPalettes counts saved palettes, optionally scoped to a user.
func (r *Repository) CountPalettes(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(1) FROM palettes`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// templateSortColumns whitelists ORDER BY identifiers. The service layer
// validates requested fields against configuration before they reach here.
var templateSortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListTemplates queries the catalogue with search, sort and pagination.
func (r *Repository) ListTemplates(ctx context.Context, query repository.TemplateQuery) ([]domain.Template, error) {
	column, ok := templateSortColumns[query.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if query.Ascending {
		direction = "ASC"
	}

	sql := `SELECT id, name, description, category, preview_url, created_at, updated_at FROM templates`
	args := []any{}
	if query.Search != "" {
		sql += ` WHERE name ILIKE $1`
		args = append(args, "%"+escapeLike(query.Search)+"%")
	}
	sql += fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, column, direction, len(args)+1, len(args)+2)
	args = append(args, query.Limit, query.Offset)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]domain.Template, 0)
	for rows.Next() {
		var t domain.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.PreviewURL, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// CountTemplates counts catalogue entries matching the search.
func (r *Repository) CountTemplates(ctx context.Context, search string) (int, error) {
	sql := `SELECT COUNT(1) FROM templates`
	args := []any{}
	if search != "" {
		sql += ` WHERE name ILIKE $1`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	var count int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetTemplateByID fetches a single template.
func (r *Repository) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	const query = `SELECT id, name, description, category, preview_url, created_at, updated_at
		FROM templates WHERE id = $1`
	var t domain.Template
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.PreviewURL, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// isInvalidUUID reports whether Postgres rejected a value that could not be
// cast to uuid. A malformed id can never match a row, so lookups treat it
// the same as no rows.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

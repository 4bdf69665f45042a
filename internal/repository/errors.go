package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrInsufficientFunds indicates a guarded debit did not apply because the
// balance floor would have been violated.
var ErrInsufficientFunds = errors.New("repository: insufficient funds")

// ErrDuplicate indicates a uniqueness constraint was violated.
var ErrDuplicate = errors.New("repository: duplicate")

package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassifiers(t *testing.T) {
	unique := &pgconn.PgError{Code: uniqueViolation}
	badUUID := &pgconn.PgError{Code: invalidTextRepresentation}

	if !isUniqueViolation(unique) {
		t.Fatal("23505 not recognized as unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Fatal("wrapped 23505 not recognized")
	}
	if isUniqueViolation(badUUID) {
		t.Fatal("22P02 misclassified as unique violation")
	}

	if !isInvalidUUID(badUUID) {
		t.Fatal("22P02 not recognized as invalid uuid")
	}
	if !isInvalidUUID(fmt.Errorf("query: %w", badUUID)) {
		t.Fatal("wrapped 22P02 not recognized")
	}
	if isInvalidUUID(unique) {
		t.Fatal("23505 misclassified as invalid uuid")
	}
	if isInvalidUUID(errors.New("plain")) || isUniqueViolation(nil) {
		t.Fatal("non-pg errors must not classify")
	}
}

package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "offer_letters_ref_no_key"})

	assert.True(t, IsDuplicateConstraintError(dup, "offer_letters_ref_no_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsCheckViolation(dup))

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, IsForeignKeyViolation(fk))

	check := &pgconn.PgError{Code: "23514"}
	assert.True(t, IsCheckViolation(check))

	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}

package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the row does not exist or a single-statement write touched zero rows.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail is returned when users.email already holds the address.
	ErrDuplicateEmail = errors.New("repository: email already exists")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

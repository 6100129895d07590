package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrParentMissing is returned when an insert references a parent comment
// that no longer exists.
var ErrParentMissing = errors.New("referenced parent comment does not exist")

const (
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// lookupErr maps an id that postgres cannot parse as a uuid to
// gorm.ErrRecordNotFound: no row can have it.
func lookupErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepr {
		return gorm.ErrRecordNotFound
	}
	return err
}

package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"golfcam/internal/store"
)

// wrapErr attaches operation context and classifies driver errors.
// Integrity constraint violations (SQLSTATE class 23) become ErrValidation
// with the driver's message kept as is.
func wrapErr(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *store.Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.NotFound(op, kind, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return &store.Error{Op: op, Kind: kind, ID: id, Err: fmt.Errorf("%w: %s", store.ErrValidation, pgErr.Message)}
	}
	return &store.Error{Op: op, Kind: kind, ID: id, Err: err}
}

package errx

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// WrapPostgres maps pgx errors to AppError.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return New(err, http.StatusNotFound, PostgresNotFoundMessage)
	}

	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}

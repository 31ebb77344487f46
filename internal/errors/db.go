package errors

import (
	"context"
	"database/sql"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDirectoryDBError maps database errors from the primary directory into
// the resolution taxonomy:
//   - sql.ErrNoRows / pgx.ErrNoRows → directory_not_found
//   - context timeouts/cancellation → directory_transient
//   - network failures → directory_transient
//   - PostgreSQL connection/resource/shutdown classes → directory_transient
//   - anything else → directory_transient (a verified identity is never
//     denied because of directory infrastructure)
//
// The not-found/transient split exists only for user-facing messaging; both
// fold into a pending session in the engine.
func MapDirectoryDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return Wrap(err, ErrCodeDirectoryNotFound, "no business code mapped for subject")
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeDirectoryTransient, "primary directory lookup timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Wrap(err, ErrCodeDirectoryTransient, "primary directory unreachable")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return Wrap(err, ErrCodeDirectoryTransient, "primary directory lookup failed")
}

// mapPgError classifies PostgreSQL errors by SQLSTATE class.
func mapPgError(pgErr *pgconn.PgError) error {
	switch {
	case pgerrcode.IsConnectionException(pgErr.Code),
		pgerrcode.IsInsufficientResources(pgErr.Code),
		pgerrcode.IsOperatorIntervention(pgErr.Code),
		pgErr.Code == pgerrcode.QueryCanceled:
		return Wrap(pgErr, ErrCodeDirectoryTransient, "primary directory unavailable")
	case pgerrcode.IsNoData(pgErr.Code):
		return Wrap(pgErr, ErrCodeDirectoryNotFound, "no business code mapped for subject")
	default:
		return Wrap(pgErr, ErrCodeDirectoryTransient, "primary directory query failed")
	}
}

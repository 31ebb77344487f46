package pgdirectory

// Package pgdirectory provides the Postgres-backed primary directory: the
// authoritative mapping from identity-provider subjects to SAP sales-person
// codes. Latency is variable in production, which is why callers race it
// against a timeout.

import (
	"context"
	"database/sql"
	"log/slog"

	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

// Primary looks up business codes by provider subject id.
type Primary struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPrimary creates a primary directory over an open database handle.
func NewPrimary(db *sql.DB, logger *slog.Logger) *Primary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Primary{db: db, logger: logger}
}

// LookupByUID returns the sales-person code mapped to the subject.
// A missing row classifies as directory_not_found; infrastructure failures
// classify as directory_transient.
func (p *Primary) LookupByUID(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", apperrors.DirectoryNotFound("empty subject id")
	}

	const query = `SELECT slp_code FROM sales_reps WHERE subject_id = $1`

	var code sql.NullString
	if err := p.db.QueryRowContext(ctx, query, uid).Scan(&code); err != nil {
		mapped := apperrors.MapDirectoryDBError(err)
		if !apperrors.IsDirectoryNotFound(mapped) {
			p.logger.WarnContext(ctx, "primary directory lookup failed", "subject", uid, "error", err)
		}
		return "", mapped
	}
	if !code.Valid || code.String == "" {
		return "", apperrors.DirectoryNotFoundf("no business code mapped for subject %s", uid)
	}
	return code.String, nil
}

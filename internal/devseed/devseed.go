// Package devseed populates the primary directory with sample sales reps for
// local development. It is only invoked in dev mode.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Rep is one directory row to seed.
type Rep struct {
	SubjectID string
	Email     string
	SlpCode   string
}

// DefaultReps mirrors the sample sales team used by the mock backend.
func DefaultReps() []Rep {
	return []Rep{
		{SubjectID: "dev|elen.hasman", Email: "elen.hasman@fantastico.example", SlpCode: "123"},
		{SubjectID: "dev|joao.silva", Email: "joao.silva@fantastico.example", SlpCode: "142"},
		{SubjectID: "dev-user", Email: "dev@fantastico.example", SlpCode: "1"},
	}
}

// Seed upserts the given reps into the directory. Existing rows keep their
// subject id but pick up email and code changes.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger, reps []Rep) error {
	if logger == nil {
		logger = slog.Default()
	}

	const upsert = `
		INSERT INTO sales_reps (subject_id, email, slp_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject_id)
		DO UPDATE SET email = EXCLUDED.email, slp_code = EXCLUDED.slp_code, updated_at = now()`

	for _, rep := range reps {
		if rep.SubjectID == "" || rep.Email == "" || rep.SlpCode == "" {
			return fmt.Errorf("invalid seed rep: %+v", rep)
		}
		if _, err := db.ExecContext(ctx, upsert, rep.SubjectID, rep.Email, rep.SlpCode); err != nil {
			return fmt.Errorf("seed sales rep %s: %w", rep.SubjectID, err)
		}
	}

	logger.InfoContext(ctx, "development directory seeded", "reps", len(reps))
	return nil
}

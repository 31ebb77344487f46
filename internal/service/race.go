package service

import (
	"context"
	"log/slog"
	"time"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
	"github.com/fantastico/telesales-go/internal/ports"
)

// defaultLookupTimeout bounds the primary directory lookup before the
// secondary fallback is consulted.
const defaultLookupTimeout = 3000 * time.Millisecond

// directoryRace arbitrates the primary (by subject id) and secondary
// (by email) directory lookups for a verified identity.
//
// The first of {primary success, primary failure, timeout} only routes the
// decision; committing the result is the caller's job, gated by the attempt
// epoch. The losing primary lookup is never cancelled: lookups are read-only
// and idempotent, so its late result is simply discarded.
type directoryRace struct {
	primary   ports.PrimaryDirectory
	secondary ports.SecondaryDirectory
	timeout   time.Duration
	logger    *slog.Logger
}

func newDirectoryRace(
	primary ports.PrimaryDirectory,
	secondary ports.SecondaryDirectory,
	timeout time.Duration,
	logger *slog.Logger,
) *directoryRace {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &directoryRace{
		primary:   primary,
		secondary: secondary,
		timeout:   timeout,
		logger:    logger,
	}
}

// resolveCode returns the candidate business code for a verified identity.
// Errors are classified as directory_not_found or directory_transient; the
// engine folds both into a pending session.
func (r *directoryRace) resolveCode(ctx context.Context, id domainsession.Identity) (string, error) {
	type primaryResult struct {
		code string
		err  error
	}

	// Buffered so a losing lookup can complete without a reader.
	resCh := make(chan primaryResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resCh <- primaryResult{err: apperrors.Internalf("primary lookup panicked: %v", rec)}
			}
		}()
		code, err := r.primary.LookupByUID(ctx, id.SubjectID)
		resCh <- primaryResult{code: code, err: err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	var routeCause error
	select {
	case res := <-resCh:
		if res.err == nil && res.code != "" {
			return res.code, nil
		}
		if res.err == nil {
			routeCause = apperrors.DirectoryNotFoundf("primary directory has no mapping for subject %s", id.SubjectID)
		} else {
			routeCause = res.err
		}
	case <-timer.C:
		routeCause = apperrors.DirectoryTransient("primary directory lookup timed out")
	case <-ctx.Done():
		routeCause = apperrors.Wrap(ctx.Err(), apperrors.ErrCodeDirectoryTransient, "resolution deadline reached")
	}

	r.logger.DebugContext(ctx, "falling back to secondary directory",
		"subject", id.SubjectID,
		"cause", routeCause)

	code, err := r.secondary.LookupByEmail(ctx, id.Email)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", apperrors.DirectoryNotFoundf("secondary directory has no mapping for %s", id.Email)
	}
	return code, nil
}

package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
	"github.com/fantastico/telesales-go/internal/mocks"
)

func raceIdentity() domainsession.Identity {
	return domainsession.Identity{
		SubjectID:     "u1",
		Email:         "rep@fantastico.example",
		EmailVerified: true,
	}
}

func TestDirectoryRace_PrimarySuccessSkipsSecondary(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").Return("V7", nil)
	// No secondary expectation: a call would fail the test.

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())
	code, err := race.resolveCode(context.Background(), raceIdentity())

	require.NoError(t, err)
	assert.Equal(t, "V7", code)
}

func TestDirectoryRace_PrimaryNotFoundFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").
		Return("", apperrors.DirectoryNotFoundf("no mapping for %s", "u1"))
	secondary.EXPECT().LookupByEmail(gomock.Any(), "rep@fantastico.example").Return("V9", nil)

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())
	code, err := race.resolveCode(context.Background(), raceIdentity())

	require.NoError(t, err)
	assert.Equal(t, "V9", code)
}

func TestDirectoryRace_PrimaryEmptyCodeFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").Return("", nil)
	secondary.EXPECT().LookupByEmail(gomock.Any(), "rep@fantastico.example").Return("V9", nil)

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())
	code, err := race.resolveCode(context.Background(), raceIdentity())

	require.NoError(t, err)
	assert.Equal(t, "V9", code)
}

func TestDirectoryRace_TimeoutRoutesToSecondary(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").
		DoAndReturn(func(context.Context, string) (string, error) {
			time.Sleep(5 * testLookupTimeout)
			return "stale", nil
		})
	secondary.EXPECT().LookupByEmail(gomock.Any(), "rep@fantastico.example").
		DoAndReturn(func(context.Context, string) (string, error) {
			time.Sleep(testLookupTimeout / 4)
			return "V9", nil
		})

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())

	start := time.Now()
	code, err := race.resolveCode(context.Background(), raceIdentity())

	require.NoError(t, err)
	assert.Equal(t, "V9", code)
	// Routed at the timeout, not when the slow primary finally returned.
	assert.Less(t, time.Since(start), 3*testLookupTimeout)
}

func TestDirectoryRace_SecondaryNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").
		Return("", apperrors.DirectoryTransient("primary down"))
	secondary.EXPECT().LookupByEmail(gomock.Any(), "rep@fantastico.example").
		Return("", apperrors.DirectoryNotFoundf("no mapping for %s", "rep@fantastico.example"))

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())
	code, err := race.resolveCode(context.Background(), raceIdentity())

	require.Error(t, err)
	assert.Empty(t, code)
	assert.True(t, apperrors.IsDirectoryNotFound(err))
}

func TestDirectoryRace_SecondaryEmptyCodeIsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").Return("", nil)
	secondary.EXPECT().LookupByEmail(gomock.Any(), "rep@fantastico.example").Return("", nil)

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())
	_, err := race.resolveCode(context.Background(), raceIdentity())

	assert.True(t, apperrors.IsDirectoryNotFound(err))
}

func TestDirectoryRace_PrimaryPanicIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockPrimaryDirectory(ctrl)
	secondary := mocks.NewMockSecondaryDirectory(ctrl)

	primary.EXPECT().LookupByUID(gomock.Any(), "u1").
		DoAndReturn(func(context.Context, string) (string, error) {
			panic("driver bug")
		})
	secondary.EXPECT().LookupByEmail(gomock.Any(), "rep@fantastico.example").Return("V9", nil)

	race := newDirectoryRace(primary, secondary, testLookupTimeout, slog.Default())
	code, err := race.resolveCode(context.Background(), raceIdentity())

	require.NoError(t, err)
	assert.Equal(t, "V9", code)
}

package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

func newTestStore(t *testing.T) (*RecordStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRecordStore(client), mr
}

func TestRecordStore_GetAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	_, found, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordStore_SetGetClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := domainsession.Record{
		BusinessCode: "V7",
		Strategy:     domainsession.StrategyProvider,
		Status:       domainsession.StatusActive,
	}
	require.NoError(t, store.Set(ctx, rec))

	got, found, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)

	require.NoError(t, store.Clear(ctx))

	_, found, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordStore_OverwriteIsWholeRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domainsession.Record{
		BusinessCode: "V7",
		Strategy:     domainsession.StrategyProvider,
		Status:       domainsession.StatusActive,
	}))
	require.NoError(t, store.Set(ctx, domainsession.Record{
		Strategy: domainsession.StrategyProvider,
		Status:   domainsession.StatusPending,
	}))

	got, found, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, got.BusinessCode, "stale business code must not survive an overwrite")
	assert.Equal(t, domainsession.StatusPending, got.Status)
}

func TestRecordStore_CorruptPayloadReadsAsAbsent(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set(defaultKey, "{not json"))

	_, found, err := store.Get(context.Background())
	assert.False(t, found)
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistedStore(err))
}

func TestRecordStore_MissingStrategyReadsAsAbsent(t *testing.T) {
	store, mr := newTestStore(t)

	require.NoError(t, mr.Set(defaultKey, `{"business_code":"V7"}`))

	_, found, err := store.Get(context.Background())
	assert.False(t, found)
	assert.True(t, apperrors.IsPersistedStore(err))
}

func TestRecordStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistedStore(err))

	err = store.Set(context.Background(), domainsession.Record{
		Strategy: domainsession.StrategyProvider,
		Status:   domainsession.StatusPending,
	})
	assert.True(t, apperrors.IsPersistedStore(err))
}

func TestRecordStore_CustomKey(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRecordStoreWithKey(client, "custom:key")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, domainsession.Record{
		BusinessCode: "V1",
		Strategy:     domainsession.StrategyURLBypass,
		Status:       domainsession.StatusActive,
	}))
	assert.True(t, mr.Exists("custom:key"))
}

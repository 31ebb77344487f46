package redisstore

// Package redisstore provides the Redis-backed session record store.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainsession "github.com/fantastico/telesales-go/internal/domain/session"
	apperrors "github.com/fantastico/telesales-go/internal/errors"
)

const defaultKey = "telesales:session:record"

// RecordStore persists the single session record as a JSON document under
// one key. The engine reads and writes whole records only, so no field-level
// operations are needed.
type RecordStore struct {
	client redis.UniversalClient
	key    string
}

// NewRecordStore creates a record store under the default key.
func NewRecordStore(client redis.UniversalClient) *RecordStore {
	return &RecordStore{client: client, key: defaultKey}
}

// NewRecordStoreWithKey creates a record store under a custom key.
func NewRecordStoreWithKey(client redis.UniversalClient, key string) *RecordStore {
	return &RecordStore{client: client, key: key}
}

func (s *RecordStore) Get(ctx context.Context) (domainsession.Record, bool, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.Record{}, false, nil
		}
		return domainsession.Record{}, false, apperrors.Wrap(err, apperrors.ErrCodePersistedStore, "read session record")
	}

	var rec domainsession.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		// Corrupt persisted state reads as absent; the engine resolves via
		// the provider path instead.
		return domainsession.Record{}, false, apperrors.Wrap(err, apperrors.ErrCodePersistedStore, "decode session record")
	}
	if rec.Strategy == "" {
		return domainsession.Record{}, false, apperrors.Wrap(
			errors.New("missing strategy"), apperrors.ErrCodePersistedStore, "decode session record")
	}
	return rec, true, nil
}

func (s *RecordStore) Set(ctx context.Context, rec domainsession.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePersistedStore, "encode session record")
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePersistedStore, fmt.Sprintf("write key %s", s.key))
	}
	return nil
}

func (s *RecordStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodePersistedStore, fmt.Sprintf("delete key %s", s.key))
	}
	return nil
}

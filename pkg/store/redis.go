package store

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/nikogura/smartresume/pkg/logging"
)

// RedisStore keeps the snapshot as a JSON string under Key.
type RedisStore struct {
	rdb    *redis.Client
	logger *logging.Logger
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL string, logger *logging.Logger) (s *RedisStore, err error) {
	var opts *redis.Options
	opts, err = redis.ParseURL(redisURL)
	if err != nil {
		err = errors.Wrapf(err, "invalid redis url %q", redisURL)
		return s, err
	}

	rdb := redis.NewClient(opts)
	err = rdb.Ping(ctx).Err()
	if err != nil {
		_ = rdb.Close()
		err = errors.Wrap(err, "redis ping failed")
		return s, err
	}

	s = NewRedisStoreWithClient(rdb, logger)
	return s, err
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(rdb *redis.Client, logger *logging.Logger) (s *RedisStore) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s = &RedisStore{rdb: rdb, logger: logger}
	return s
}

// Load implements ResultStore.
func (s *RedisStore) Load(ctx context.Context) (snap Snapshot, err error) {
	var data []byte
	data, err = s.rdb.Get(ctx, Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			err = ErrEmpty
			return snap, err
		}
		err = errors.Wrap(err, "failed to read job search results")
		return snap, err
	}

	err = json.Unmarshal(data, &snap)
	if err != nil {
		err = errors.Wrap(err, "failed to parse job search results")
		return snap, err
	}

	if len(snap.Jobs) == 0 {
		err = ErrEmpty
	}

	return snap, err
}

// Save implements ResultStore. Empty result sets are ignored.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) (err error) {
	stamped, ok := stamp(snap)
	if !ok {
		return err
	}

	var data []byte
	data, err = json.Marshal(stamped)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal snapshot")
		return err
	}

	err = s.rdb.Set(ctx, Key, data, 0).Err()
	if err != nil {
		err = errors.Wrap(err, "failed to save job search results")
		return err
	}

	s.logger.Debug("saved job search results", "key", Key, "jobs", len(stamped.Jobs))
	return err
}

// Shutdown implements ResultStore.
func (s *RedisStore) Shutdown(_ context.Context) (err error) {
	err = s.rdb.Close()
	return err
}

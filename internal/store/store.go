// Package store implements the local-first keyed snapshot store the
// workflow engine reads and writes through. Redis holds the local
// snapshot of each collection; an optional backend Source is reconciled
// in the background. The store keeps serving from the snapshot when the
// backend is unreachable.
package store

import (
	"context"
	"errors"
	"time"

	"agency_workspace_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by a Source when no snapshot exists for a key.
var ErrNotFound = errors.New("store: snapshot not found")

// Source is the backend a snapshot reconciles against. A nil Source means
// the workspace runs disconnected (cache-only).
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store is the local-first snapshot store. Load serves the cached value
// immediately when present and refreshes it from the Source in the
// background; Replace persists to the cache before returning and syncs
// to the Source asynchronously.
type Store struct {
	rdb *redis.Client
	src Source
	log *logger.Logger
	grp *errgroup.Group
}

const syncTimeout = 10 * time.Second

// New creates a Store over the given snapshot cache and backend source.
func New(rdb *redis.Client, src Source, log *logger.Logger) *Store {
	grp := &errgroup.Group{}
	grp.SetLimit(8)
	return &Store{rdb: rdb, src: src, log: log, grp: grp}
}

// Load returns the snapshot for key. The boolean is false when neither
// the cache nor the source holds a value; callers substitute their
// default. Load never returns an error: unreachable infrastructure
// degrades to "no data."
func (s *Store) Load(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		// Snapshot hit; refresh from the backend out of band.
		s.reconcile(key)
		return data, true
	case errors.Is(err, redis.Nil):
		// Cache miss falls through to a synchronous fetch.
	default:
		s.log.StoreError("cache_get", key, err)
	}

	if s.src == nil {
		s.log.StoreDegraded(key, "no backend source configured")
		return nil, false
	}

	fetched, err := s.src.Fetch(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.StoreDegraded(key, "backend fetch failed: "+err.Error())
		}
		return nil, false
	}

	if err := s.rdb.Set(ctx, key, fetched, 0).Err(); err != nil {
		s.log.StoreError("cache_set", key, err)
	}
	return fetched, true
}

// Replace persists the full next snapshot for key. The cache write must
// succeed before Replace returns; the backend sync is best effort and
// runs in the background.
func (s *Store) Replace(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		s.log.StoreError("cache_set", key, err)
		return err
	}

	if s.src != nil {
		s.grp.Go(func() error {
			syncCtx, cancel := context.WithTimeout(context.Background(), syncTimeout)
			defer cancel()
			if err := s.src.Save(syncCtx, key, data); err != nil {
				s.log.StoreError("backend_save", key, err)
			}
			return nil
		})
	}
	return nil
}

// Discard removes a snapshot from the cache. Used to drop a corrupt
// value so the next Load repopulates from the backend.
func (s *Store) Discard(ctx context.Context, key string) {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.StoreError("cache_del", key, err)
	}
}

// Ping reports whether the snapshot cache is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close waits for in-flight background syncs to finish.
func (s *Store) Close() error {
	return s.grp.Wait()
}

func (s *Store) reconcile(key string) {
	if s.src == nil {
		return
	}
	s.grp.Go(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		fetched, err := s.src.Fetch(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				s.log.StoreError("reconcile_fetch", key, err)
			}
			return nil
		}
		if err := s.rdb.Set(ctx, key, fetched, 0).Err(); err != nil {
			s.log.StoreError("reconcile_set", key, err)
		}
		return nil
	})
}

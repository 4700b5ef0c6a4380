package offline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces every key the RedisStore writes.
const DefaultRedisPrefix = "acco"

// RedisStore keeps entries as JSON strings with a set of paths per cache.
type RedisStore struct {
	R      *redis.Client
	Prefix string
}

// NewRedisStore connects to addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{R: redis.NewClient(&redis.Options{Addr: addr}), Prefix: DefaultRedisPrefix}
}

func (s *RedisStore) entryKey(cache, path string) string {
	return s.Prefix + ":cache:" + cache + ":entry:" + path
}

func (s *RedisStore) pathsKey(cache string) string { return s.Prefix + ":cache:" + cache + ":paths" }

func (s *RedisStore) cachesKey() string { return s.Prefix + ":caches" }

func (s *RedisStore) Get(ctx context.Context, cache, path string) (*Entry, error) {
	b, err := s.R.Get(ctx, s.entryKey(cache, path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read cache entry %s: %w", path, err)
	}
	var e Entry
	return &e, json.Unmarshal(b, &e)
}

// PutAll writes every entry in one MULTI/EXEC transaction.
func (s *RedisStore) PutAll(ctx context.Context, cache string, entries []Entry) error {
	if err := validName(cache); err != nil {
		return err
	}
	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		payloads[i] = b
	}
	_, err := s.R.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for i, e := range entries {
			p.Set(ctx, s.entryKey(cache, e.Path), payloads[i], 0)
			p.SAdd(ctx, s.pathsKey(cache), e.Path)
		}
		p.SAdd(ctx, s.cachesKey(), cache)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cannot store cache %s: %w", cache, err)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context, cache string) ([]string, error) {
	keys, err := s.R.SMembers(ctx, s.pathsKey(cache)).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot list cache %s: %w", cache, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStore) Caches(ctx context.Context) ([]string, error) {
	names, err := s.R.SMembers(ctx, s.cachesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot list caches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Drop(ctx context.Context, cache string) error {
	paths, err := s.Keys(ctx, cache)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(paths)+1)
	for _, p := range paths {
		keys = append(keys, s.entryKey(cache, p))
	}
	keys = append(keys, s.pathsKey(cache))
	_, err = s.R.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		p.SRem(ctx, s.cachesKey(), cache)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cannot drop cache %s: %w", cache, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.R.Close()
}

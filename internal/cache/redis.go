package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "tourcms:cache:"

// Redis keeps entries as plain strings and one set per tag listing the keys
// that carry it. A tag set's TTL is refreshed on every Set so it outlives
// its members when all entries share one TTL.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. An empty prefix uses "tourcms:cache:";
// a prefix without a trailing colon gets one.
func NewRedis(client *redis.Client, prefix string) *Redis {
	switch {
	case prefix == "":
		prefix = defaultRedisPrefix
	case !strings.HasSuffix(prefix, ":"):
		prefix += ":"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) entryKey(key string) string { return r.prefix + "entry:" + key }

func (r *Redis) tagKey(tag string) string { return r.prefix + "tag:" + tag }

func (r *Redis) versionKey(tag string) string { return r.prefix + "ver:" + tag }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return data, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	_, err := r.client.TxPipelined(ctx, r.writeEntry(ctx, key, value, ttl, tags))
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Version(ctx context.Context, tags ...string) (string, error) {
	version, err := r.readVersion(ctx, r.client, uniqueTags(tags))
	if err != nil {
		return "", fmt.Errorf("cache version: %w", err)
	}
	return version, nil
}

// SetIfVersion WATCHes the tag version keys so an Invalidate landing between
// the comparison and EXEC aborts the write.
func (r *Redis) SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version string, tags ...string) (bool, error) {
	unique := uniqueTags(tags)
	watched := make([]string, len(unique))
	for i, tag := range unique {
		watched[i] = r.versionKey(tag)
	}

	stored := false
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.readVersion(ctx, tx, unique)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		if _, err := tx.TxPipelined(ctx, r.writeEntry(ctx, key, value, ttl, unique)); err != nil {
			return err
		}
		stored = true
		return nil
	}, watched...)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache set %s: %w", key, err)
	}
	return stored, nil
}

func (r *Redis) writeEntry(ctx context.Context, key string, value []byte, ttl time.Duration, tags []string) func(redis.Pipeliner) error {
	entryKey := r.entryKey(key)
	return func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, entryKey, value, ttl)
		for _, tag := range uniqueTags(tags) {
			tagKey := r.tagKey(tag)
			pipe.SAdd(ctx, tagKey, entryKey)
			if ttl > 0 {
				pipe.Expire(ctx, tagKey, ttl)
			}
		}
		return nil
	}
}

func (r *Redis) readVersion(ctx context.Context, cmd redis.Cmdable, tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = r.versionKey(tag)
	}
	values, err := cmd.MGet(ctx, keys...).Result()
	if err != nil {
		return "", err
	}
	counters := make([]int64, len(tags))
	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return "", fmt.Errorf("parse version %s: %w", keys[i], err)
		}
		counters[i] = n
	}
	return formatVersion(tags, counters), nil
}

func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range uniqueTags(tags) {
		if err := r.client.Incr(ctx, r.versionKey(tag)).Err(); err != nil {
			return fmt.Errorf("cache invalidate %s: %w", tag, err)
		}
		tagKey := r.tagKey(tag)
		members, err := r.client.SMembers(ctx, tagKey).Result()
		if err != nil {
			return fmt.Errorf("cache invalidate %s: %w", tag, err)
		}
		keys := append(members, tagKey)
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("cache invalidate %s: %w", tag, err)
		}
	}
	return nil
}

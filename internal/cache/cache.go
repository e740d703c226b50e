// Package cache stores rendered public responses and drops them by tag when
// the dashboard mutates the content they were built from.
package cache

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Store is a key/value cache whose entries carry invalidation tags.
//
// Every Invalidate bumps a per-tag version. Readers take Version before
// building a response and write it back with SetIfVersion, which refuses
// the write when any of the tags was invalidated in between.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	Version(ctx context.Context, tags ...string) (string, error)
	SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version string, tags ...string) (bool, error)
	Invalidate(ctx context.Context, tags ...string) error
}

// Nop never stores anything. Used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration, ...string) error { return nil }

func (Nop) Version(context.Context, ...string) (string, error) { return "", nil }

func (Nop) SetIfVersion(context.Context, string, []byte, time.Duration, string, ...string) (bool, error) {
	return false, nil
}

func (Nop) Invalidate(context.Context, ...string) error { return nil }

func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// formatVersion joins per-tag counters in tag order, e.g. "Post=3,Tag=0".
func formatVersion(tags []string, counters []int64) string {
	var b strings.Builder
	for i, tag := range tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tag)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(counters[i], 10))
	}
	return b.String()
}

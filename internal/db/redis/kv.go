package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/scxa/internal/db"
)

// scanCount is the SCAN page size hint.
const scanCount = 100

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// DelMatch deletes every key matching a glob pattern and returns how many
// were removed. Keys are collected with SCAN, so the pass is not atomic.
func (s *Store) DelMatch(ctx context.Context, pattern string) (int, error) {
	var removed int
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(scanCount).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return removed, &db.Error{Op: db.OpScan, Err: err}
		}
		if len(res.Elements) > 0 {
			del := s.b().Del().Key(res.Elements...).Build()
			n, err := s.do(ctx, del).AsInt64()
			if err != nil {
				return removed, &db.Error{Op: db.OpDel, Err: err}
			}
			removed += int(n)
		}
		cursor = res.Cursor
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Package cache implements the TTL'd key-value store backing the market
// data client. Entries live as one JSON file per key under a cache
// directory; an entry older than the TTL is treated as absent and purged
// on the next read. Store failures are an optimization loss, never an
// error: every failure path degrades to a cache miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL matches the most complete variant of the cache: five minutes.
const DefaultTTL = 5 * time.Minute

const filePrefix = "crypto_cache_"

// entry is the persisted envelope: the raw cached payload plus the write
// time in milliseconds since epoch.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type Store struct {
	dir    string
	ttl    time.Duration
	logger *logrus.Logger

	// now is swappable so expiry can be tested against a fake clock.
	now func() time.Time
}

func NewStore(dir string, ttl time.Duration, logger *logrus.Logger) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logrus.New()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Store{
		dir:    dir,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Get returns the cached payload for key, or ok=false on a miss. An entry
// past its TTL is removed and reported as a miss.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	path := s.path(key)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache entry corrupt, dropping")
		s.remove(path, key)
		return nil, false
	}

	age := s.now().UnixMilli() - e.Timestamp
	if age > s.ttl.Milliseconds() {
		s.remove(path, key)
		return nil, false
	}
	return e.Data, true
}

// Set stores the payload under key, overwriting any prior entry. Write
// failures are logged and swallowed.
func (s *Store) Set(key string, data json.RawMessage) {
	e := entry{
		Data:      data,
		Timestamp: s.now().UnixMilli(),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache entry marshal failed")
		return
	}
	if err := os.WriteFile(s.path(key), raw, 0o644); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (s *Store) remove(path, key string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.WithError(err).WithField("key", key).Warn("cache purge failed")
	}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, filePrefix+sanitize(key)+".json")
}

// sanitize keeps keys filesystem-safe without introducing collisions for
// the character set used by the key builders below.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, key)
}

// Key builds a collision-free cache key from a resource name and a
// canonical (sorted) rendering of its query parameters.
func Key(resource string, params map[string]string) string {
	if len(params) == 0 {
		return resource
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(resource)
	for _, name := range names {
		b.WriteByte('_')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}

// ChartKey keys a market_chart series by coin and range.
func ChartKey(coinID string, days int) string {
	return fmt.Sprintf("chart_%s_%d", coinID, days)
}

// OhlcKey keys a candle series by coin and range so distinct ranges never
// collide.
func OhlcKey(coinID string, days int) string {
	return fmt.Sprintf("ohlc_%s_%d", coinID, days)
}

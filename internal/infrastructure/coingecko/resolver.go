package coingecko

import "encoding/json"

// source is one step of an ordered resolution chain. A nil result means
// the step had nothing and the next one is tried.
type source struct {
	name   string
	lookup func() json.RawMessage
}

// resolve walks the chain in order and stops at the first hit. Which
// endpoints get which sources is decided per operation: the coin list and
// chart get snapshot+cache, OHLC gets cache only, detail gets neither.
func (c *Client) resolve(sources ...source) json.RawMessage {
	for _, s := range sources {
		raw := s.lookup()
		if raw == nil {
			continue
		}
		c.logger.WithField("source", s.name).Debug("resolved without network")
		return raw
	}
	return nil
}

// snapshotSource serves a bundled fixture file, when a loader is wired.
func (c *Client) snapshotSource(filename string) source {
	return source{
		name: "snapshot:" + filename,
		lookup: func() json.RawMessage {
			if c.snapshots == nil {
				return nil
			}
			return c.snapshots.Load(filename)
		},
	}
}

// cacheSource serves a previously stored response, when a store is wired.
func (c *Client) cacheSource(key string) source {
	return source{
		name: "cache:" + key,
		lookup: func() json.RawMessage {
			if c.store == nil {
				return nil
			}
			raw, ok := c.store.Get(key)
			if !ok {
				return nil
			}
			return raw
		},
	}
}

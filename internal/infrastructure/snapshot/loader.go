// Package snapshot loads pre-fetched JSON fixtures so the dashboard can
// serve list and chart data without touching the rate-limited upstream.
package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Fixture file names, fixed by convention. cmd/snapshot writes them and
// the loader reads them back.
const (
	CoinListFile = "cryptocurrencylist.json"
	ChartFile    = "chartpage.json"
)

// DefaultDir is the fixture directory relative to the working directory.
const DefaultDir = "data"

type Loader struct {
	dirs   []string
	logger *logrus.Logger
}

// NewLoader builds a loader probing, in order: the configured directory
// (when non-empty), the data/ directory under the current working
// directory, and the data/ directory next to the running executable. The
// multiple candidates tolerate differing deployment layouts.
func NewLoader(dir string, logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}

	var dirs []string
	if dir != "" {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, DefaultDir)
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), DefaultDir))
	}

	return &Loader{dirs: dirs, logger: logger}
}

// Load tries each candidate path in strict sequence and returns the first
// fixture that both reads and parses as JSON. Every candidate failing is a
// normal outcome (nil), not an error.
func (l *Loader) Load(name string) json.RawMessage {
	for _, dir := range l.dirs {
		path := filepath.Join(dir, name)

		raw, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				l.logger.WithError(err).WithField("path", path).Warn("snapshot read failed")
			}
			continue
		}
		if !json.Valid(raw) {
			l.logger.WithField("path", path).Warn("snapshot is not valid JSON, skipping")
			continue
		}
		return raw
	}
	return nil
}

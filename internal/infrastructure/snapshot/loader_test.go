package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadFromConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	fixture := `[{"id":"bitcoin","symbol":"btc"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CoinListFile), []byte(fixture), 0o644))

	loader := NewLoader(dir, logrus.New())

	raw := loader.Load(CoinListFile)
	require.NotNil(t, raw)
	assert.JSONEq(t, fixture, string(raw))
}

func TestLoader_MissingFixtureReturnsNil(t *testing.T) {
	loader := NewLoader(t.TempDir(), logrus.New())

	assert.Nil(t, loader.Load(ChartFile))
}

func TestLoader_InvalidJSONIsSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChartFile), []byte("<html>rate limited</html>"), 0o644))

	loader := NewLoader(dir, logrus.New())

	assert.Nil(t, loader.Load(ChartFile))
}

func TestLoader_FirstCandidateWins(t *testing.T) {
	first := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(first, CoinListFile), []byte(`["first"]`), 0o644))

	// A second candidate exists via a chdir-relative data dir; the
	// configured dir must still take precedence.
	work := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(work, DefaultDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(work, DefaultDir, CoinListFile), []byte(`["second"]`), 0o644))
	t.Chdir(work)

	loader := NewLoader(first, logrus.New())

	raw := loader.Load(CoinListFile)
	require.NotNil(t, raw)
	assert.JSONEq(t, `["first"]`, string(raw))
}

func TestLoader_FallsBackToWorkingDirData(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(work, DefaultDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(work, DefaultDir, CoinListFile), []byte(`["fallback"]`), 0o644))
	t.Chdir(work)

	loader := NewLoader(filepath.Join(work, "does-not-exist"), logrus.New())

	raw := loader.Load(CoinListFile)
	require.NotNil(t, raw)
	assert.JSONEq(t, `["fallback"]`, string(raw))
}

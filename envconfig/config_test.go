package envconfig

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setHome points SEQPREP_HOME at a fresh directory and forgets any loaded
// config file.
func setHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("SEQPREP_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{"SEQPREP_DEBUG", "SEQPREP_TRACE", "SEQPREP_DATA_DIR", "SEQPREP_CACHE_DIR", "SEQPREP_UNKNOWN_THRESHOLD", "SEQPREP_SEED"} {
		unsetenv(t, key)
	}

	configOnce, config, configPath = sync.Once{}, nil, ""
	t.Cleanup(func() {
		configOnce, config, configPath = sync.Once{}, nil, ""
	})
	return home
}

func unsetenv(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestConfig(t *testing.T) {
	setHome(t)

	LoadConfig()
	require.False(t, Debug)
	assert.Equal(t, "data", DataDir)
	assert.Equal(t, "pkl", CacheDir)
	assert.Equal(t, 50, UnknownThreshold)
	assert.Equal(t, uint64(1), Seed)

	t.Setenv("SEQPREP_DEBUG", "false")
	LoadConfig()
	require.False(t, Debug)

	t.Setenv("SEQPREP_DEBUG", "1")
	LoadConfig()
	require.True(t, Debug)

	t.Setenv("SEQPREP_DEBUG", "yes please")
	LoadConfig()
	require.True(t, Debug)
}

func TestConfigValues(t *testing.T) {
	cases := map[string]struct {
		key, value string
		check      func(t *testing.T)
	}{
		"data dir":          {"SEQPREP_DATA_DIR", "/corpora", func(t *testing.T) { assert.Equal(t, "/corpora", DataDir) }},
		"quoted cache dir":  {"SEQPREP_CACHE_DIR", `" /tmp/cache "`, func(t *testing.T) { assert.Equal(t, "/tmp/cache", CacheDir) }},
		"threshold":         {"SEQPREP_UNKNOWN_THRESHOLD", "3", func(t *testing.T) { assert.Equal(t, 3, UnknownThreshold) }},
		"negative":          {"SEQPREP_UNKNOWN_THRESHOLD", "-1", func(t *testing.T) { assert.Equal(t, -1, UnknownThreshold) }},
		"invalid threshold": {"SEQPREP_UNKNOWN_THRESHOLD", "many", func(t *testing.T) { assert.Equal(t, 50, UnknownThreshold) }},
		"seed":              {"SEQPREP_SEED", "42", func(t *testing.T) { assert.Equal(t, uint64(42), Seed) }},
		"invalid seed":      {"SEQPREP_SEED", "-3", func(t *testing.T) { assert.Equal(t, uint64(1), Seed) }},
		"trace":             {"SEQPREP_TRACE", "true", func(t *testing.T) { assert.True(t, Trace) }},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			setHome(t)
			t.Setenv(tt.key, tt.value)
			LoadConfig()
			tt.check(t)
		})
	}
}

func TestConfigFile(t *testing.T) {
	home := setHome(t)

	var cfg Config
	_, err := toml.Decode(GenerateExampleConfig(), &cfg)
	require.NoError(t, err, "example config must parse")

	content := `
[paths]
data = "/srv/corpora"

[vocabulary]
unknown_threshold = 0
seed = 9

[logging]
debug = true
`
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0o644))

	t.Setenv("SEQPREP_SEED", "11")
	LoadConfig()

	assert.Equal(t, filepath.Join(home, "config.toml"), ConfigPath())
	assert.Equal(t, "/srv/corpora", DataDir)
	assert.Equal(t, "pkl", CacheDir)
	assert.Equal(t, 0, UnknownThreshold, "explicit zero in the file is kept")
	assert.Equal(t, uint64(11), Seed, "environment wins over the file")
	assert.True(t, Debug)
}

func TestAsMap(t *testing.T) {
	setHome(t)
	t.Setenv("SEQPREP_SEED", "5")
	LoadConfig()

	vars := AsMap()
	for name, v := range vars {
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Description, name)
	}

	assert.Equal(t, "5", Values()["SEQPREP_SEED"])
}

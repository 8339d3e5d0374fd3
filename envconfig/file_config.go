package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
)

// Config represents the TOML configuration structure
type Config struct {
	Paths struct {
		Data  string `toml:"data"`
		Cache string `toml:"cache"`
	} `toml:"paths"`

	Vocabulary struct {
		UnknownThreshold *int    `toml:"unknown_threshold"`
		Seed             *uint64 `toml:"seed"`
	} `toml:"vocabulary"`

	Logging struct {
		Debug bool `toml:"debug"`
		Trace bool `toml:"trace"`
	} `toml:"logging"`
}

var (
	configOnce sync.Once
	config     *Config
	configPath string
)

// GetConfigPaths returns the list of possible config file paths for the current OS
func GetConfigPaths() []string {
	paths := []string{filepath.Join(Home, "config.toml")}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			paths = append(paths, filepath.Join(appData, "seqprep", "config.toml"))
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			paths = append(paths,
				filepath.Join(home, "Library", "Application Support", "seqprep", "config.toml"),
				filepath.Join(home, ".config", "seqprep", "config.toml"),
			)
		}
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			paths = append(paths, filepath.Join(xdgConfig, "seqprep", "config.toml"))
		}
		home, err := os.UserHomeDir()
		if err == nil {
			paths = append(paths, filepath.Join(home, ".config", "seqprep", "config.toml"))
		}
		paths = append(paths, "/etc/seqprep/config.toml")
	}

	return paths
}

// loadConfig loads the first available configuration file
func loadConfig() (*Config, string, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			var cfg Config
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, "", fmt.Errorf("error parsing config file %s: %w", path, err)
			}
			return &cfg, path, nil
		}
	}
	return nil, "", nil
}

// GetConfigValue returns the value for a given environment variable key from the config file
func GetConfigValue(key string) string {
	configOnce.Do(func() {
		var err error
		config, configPath, err = loadConfig()
		if err != nil {
			slog.Warn("failed to load config file", "error", err)
		} else if config != nil {
			slog.Debug("loaded config file", "path", configPath)
		}
	})

	if config == nil {
		return ""
	}

	switch key {
	case "SEQPREP_DATA_DIR":
		return config.Paths.Data
	case "SEQPREP_CACHE_DIR":
		return config.Paths.Cache
	case "SEQPREP_UNKNOWN_THRESHOLD":
		if config.Vocabulary.UnknownThreshold != nil {
			return strconv.Itoa(*config.Vocabulary.UnknownThreshold)
		}
	case "SEQPREP_SEED":
		if config.Vocabulary.Seed != nil {
			return strconv.FormatUint(*config.Vocabulary.Seed, 10)
		}
	case "SEQPREP_DEBUG":
		if config.Logging.Debug {
			return "true"
		}
	case "SEQPREP_TRACE":
		if config.Logging.Trace {
			return "true"
		}
	}

	return ""
}

// ConfigPath returns the path of the loaded config file, if any.
func ConfigPath() string {
	return configPath
}

// GenerateExampleConfig returns a commented example TOML configuration
func GenerateExampleConfig() string {
	return `# seqprep configuration file
# Environment variables take precedence over these values.

[paths]
# Root of the dataset directories (default: "data")
data = "data"
# Where prepared artifacts are written (default: "pkl")
cache = "pkl"

[vocabulary]
# Minimum training count for words added without a vector (default: 50)
# A negative value disables the extension.
unknown_threshold = 50
# Seed for generated vectors (default: 1)
seed = 1

[logging]
# Enable debug logging (default: false)
debug = false
# Log every unknown token (default: false)
trace = false
`
}

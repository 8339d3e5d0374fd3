package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// Set via SEQPREP_DEBUG in the environment
	Debug bool
	// Set via SEQPREP_TRACE in the environment
	Trace bool
	// Set via SEQPREP_HOME in the environment
	Home string
	// Set via SEQPREP_DATA_DIR in the environment
	DataDir string
	// Set via SEQPREP_CACHE_DIR in the environment
	CacheDir string
	// Set via SEQPREP_UNKNOWN_THRESHOLD in the environment
	UnknownThreshold int
	// Set via SEQPREP_SEED in the environment
	Seed uint64
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"SEQPREP_DEBUG":             {"SEQPREP_DEBUG", Debug, "Show additional debug information (e.g. SEQPREP_DEBUG=1)"},
		"SEQPREP_TRACE":             {"SEQPREP_TRACE", Trace, "Log every unknown token and skipped line"},
		"SEQPREP_HOME":              {"SEQPREP_HOME", Home, "Location of config.toml and .env (default ~/.seqprep)"},
		"SEQPREP_DATA_DIR":          {"SEQPREP_DATA_DIR", DataDir, "Root of the dataset directories (default \"data\")"},
		"SEQPREP_CACHE_DIR":         {"SEQPREP_CACHE_DIR", CacheDir, "Where prepared artifacts are written (default \"pkl\")"},
		"SEQPREP_UNKNOWN_THRESHOLD": {"SEQPREP_UNKNOWN_THRESHOLD", UnknownThreshold, "Minimum training count for words added without a vector (default 50)"},
		"SEQPREP_SEED":              {"SEQPREP_SEED", Seed, "Seed for generated vectors (default 1)"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value. Values missing from the
// environment are read from the config file.
func clean(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.Trim(v, "\"' ")
	}
	return strings.Trim(GetConfigValue(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Debug, Trace = false, false
	Home, DataDir, CacheDir = defaultHome(), "data", "pkl"
	UnknownThreshold = 50
	Seed = 1

	if home := strings.Trim(os.Getenv("SEQPREP_HOME"), "\"' "); home != "" {
		Home = home
	}

	if debug := clean("SEQPREP_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	if trace := clean("SEQPREP_TRACE"); trace != "" {
		t, err := strconv.ParseBool(trace)
		if err != nil {
			slog.Error("invalid setting, ignoring", "SEQPREP_TRACE", trace, "error", err)
		} else {
			Trace = t
		}
	}

	if dir := clean("SEQPREP_DATA_DIR"); dir != "" {
		DataDir = dir
	}

	if dir := clean("SEQPREP_CACHE_DIR"); dir != "" {
		CacheDir = dir
	}

	if threshold := clean("SEQPREP_UNKNOWN_THRESHOLD"); threshold != "" {
		t, err := strconv.Atoi(threshold)
		if err != nil {
			slog.Error("invalid setting, ignoring", "SEQPREP_UNKNOWN_THRESHOLD", threshold, "error", err)
		} else {
			UnknownThreshold = t
		}
	}

	if seed := clean("SEQPREP_SEED"); seed != "" {
		s, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			slog.Error("invalid setting, ignoring", "SEQPREP_SEED", seed, "error", err)
		} else {
			Seed = s
		}
	}
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Error("failed to lookup home directory", "error", err)
		return ".seqprep"
	}
	return filepath.Join(home, ".seqprep")
}

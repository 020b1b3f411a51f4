package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mkrupp/newsletterhub/internal/repo/document"
)

const (
	configFolderName  = "newsletterhub"
	configFileName    = "hubctl.toml"
	configPathEnvName = "XDG_CONFIG_HOME"

	envStoreDriver = "NEWSLETTERHUB_STORE_DRIVER"
	envStorePath   = "NEWSLETTERHUB_STORE_PATH"
	envLogLevel    = "NEWSLETTERHUB_LOG_LEVEL"
)

// ErrInvalidConfigFile is returned when the hubctl config file cannot be used.
var ErrInvalidConfigFile = errors.New("invalid config file")

// Config holds hubctl settings.
type Config struct {
	Store    document.RepositoryConfig
	LogLevel string
}

// DefaultConfig matches the defaults of hubsvc, so both binaries open the same
// store when run from the same directory.
func DefaultConfig() Config {
	return Config{
		Store: document.RepositoryConfig{
			Driver: "file",
			Path:   filepath.Join("var", "data", "db.json"),
		},
		LogLevel: "warn",
	}
}

type fileConfig struct {
	Store struct {
		Driver *string `toml:"driver"`
		Path   *string `toml:"path"`
	} `toml:"store"`
	Log struct {
		Level *string `toml:"level"`
	} `toml:"log"`
}

// LoadConfig resolves settings from defaults, the config file and the
// environment, in that order. An explicit path must exist; without one the
// XDG location is tried and silently skipped when absent.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		found, ok, err := findConfigPath()
		if err != nil {
			return Config{}, err
		}

		if ok {
			path = found
		}
	}

	if path != "" {
		fileCfg, err := loadFileConfig(path)
		if err != nil {
			return Config{}, err
		}

		applyFileConfig(&cfg, fileCfg)
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

func findConfigPath() (string, bool, error) {
	candidates := make([]string, 0, 2)

	if xdgConfigHome := strings.TrimSpace(os.Getenv(configPathEnvName)); xdgConfigHome != "" {
		candidates = append(candidates, filepath.Join(xdgConfigHome, configFolderName, configFileName))
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", configFolderName, configFileName))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", false, fmt.Errorf("%w: %q is a directory", ErrInvalidConfigFile, candidate)
			}

			return candidate, true, nil
		}

		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		return "", false, fmt.Errorf("stat config %q: %w", candidate, err)
	}

	return "", false, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%w %q: %w", ErrInvalidConfigFile, path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		unknown := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}

		sort.Strings(unknown)

		return fileConfig{}, fmt.Errorf("%w %q: unknown key(s): %s",
			ErrInvalidConfigFile, path, strings.Join(unknown, ", "))
	}

	if cfg.Store.Path != nil && strings.TrimSpace(*cfg.Store.Path) == "" {
		return fileConfig{}, fmt.Errorf("%w %q: store.path must be non-empty when provided", ErrInvalidConfigFile, path)
	}

	return cfg, nil
}

func applyFileConfig(cfg *Config, fileCfg fileConfig) {
	if fileCfg.Store.Driver != nil {
		cfg.Store.Driver = *fileCfg.Store.Driver
	}

	if fileCfg.Store.Path != nil {
		cfg.Store.Path = *fileCfg.Store.Path
	}

	if fileCfg.Log.Level != nil {
		cfg.LogLevel = *fileCfg.Log.Level
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(envStoreDriver); ok && v != "" {
		cfg.Store.Driver = v
	}

	if v, ok := os.LookupEnv(envStorePath); ok && v != "" {
		cfg.Store.Path = v
	}

	if v, ok := os.LookupEnv(envLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
}

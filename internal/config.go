package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hbomb79/Cull/internal/xmp"
	"github.com/ilyakaznacheev/cleanenv"
)

// CullConfig is the struct used to contain the various user config
// supplied by file, environment, or manually inside the code. Settings
// that change per invocation (source, destination, criteria, action)
// come from the command line instead and are not part of this struct.
type CullConfig struct {
	Sweep        SweepConfig `yaml:"sweep"`
	Scanner      xmp.Config  `yaml:"scanner"`
	CacheDirPath string      `yaml:"cache_dir" env:"CACHE_DIR"`
	LogFilePath  string      `yaml:"log_file" env:"LOG_FILE"`
}

// SweepConfig is a subset of the configuration that focuses only on how
// the selection service paces its sweeps of the source directory.
type SweepConfig struct {
	ForceSyncSeconds          int `yaml:"force_sync_seconds" env:"FORCE_SYNC_SECONDS" env-default:"30"`
	RequiredModTimeAgeSeconds int `yaml:"min_modtime_age_seconds" env:"MIN_MODTIME_AGE_SECONDS" env-default:"0"`
	Parallelism               int `yaml:"parallelism" env:"PARALLELISM" env-default:"1"`
}

// Loads a configuration file formatted in YAML in to a
// CullConfig struct ready to be passed to the orchestrator
func (config *CullConfig) LoadFromFile(configPath string) error {
	err := cleanenv.ReadConfig(configPath, config)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s - %v", configPath, err.Error())
	}

	return nil
}

// LoadFromEnvironment populates the config from environment variables
// (and the tagged defaults) for runs where no config file is in play.
func (config *CullConfig) LoadFromEnvironment() error {
	err := cleanenv.ReadEnv(config)
	if err != nil {
		return fmt.Errorf("failed to load configuration from environment - %v", err.Error())
	}

	return nil
}

// getCacheDir will return the directory path used for storing cache information. It will first look to
// in the config for a value, but if none is found, a default value will be returned. If the default
// cannot be derived due to an error, a panic will occur.
func (config *CullConfig) getCacheDir() string {
	if config.CacheDirPath != "" {
		return filepath.Join(config.CacheDirPath, CULL_USER_DIR_SUFFIX)
	}

	// Derive default
	dir, err := os.UserCacheDir()
	if err != nil {
		panic(fmt.Sprintf("FAILURE to derive user cache dir %s", err))
	}

	return filepath.Join(dir, CULL_USER_DIR_SUFFIX)
}

// CacheFilePath returns the path of the file used to persist the rating
// cache between runs.
func (config *CullConfig) CacheFilePath() string {
	return filepath.Join(config.getCacheDir(), "ratings.json")
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Hazboun6/gwa/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the gwa configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Set defaults but don't bind environment variables for this specific load
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix("GWA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific machine-local configuration values to environment variables
	BindSensitiveEnvVars(v)

	// Set defaults first
	SetDefaults(v)

	// Manually merge configs in precedence order: system -> user -> project -> env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// findProjectConfig searches for gwa.toml or config.toml by walking up the
// directory tree. Returns the path to the first config file found, or empty
// string if none found. Preference order: gwa.toml > config.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		gwaPath := filepath.Join(dir, "gwa.toml")
		if _, err := os.Stat(gwaPath); err == nil {
			return gwaPath
		}

		configPath := filepath.Join(dir, "config.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root, stop searching
			break
		}
		dir = parent
	}

	return ""
}

// CascadeEntry describes one file in the configuration cascade.
type CascadeEntry struct {
	Source string // system, user, or project
	Path   string
	Exists bool
}

// Cascade returns the configuration files consulted at load time, in merge
// order (later entries override earlier ones, environment variables override
// all of them). Missing files are included so callers can show the full
// search list.
func Cascade() []CascadeEntry {
	homeDir, _ := os.UserHomeDir()
	gwaDir := filepath.Join(homeDir, ".gwa")

	entries := []CascadeEntry{
		{Source: "system", Path: "/etc/gwa/config.toml"},
		{Source: "user", Path: filepath.Join(gwaDir, "gwa.toml")},
		{Source: "user", Path: filepath.Join(gwaDir, "config.toml")},
	}

	// Project config found via upward search (highest file precedence)
	if projectConfig := findProjectConfig(); projectConfig != "" {
		entries = append(entries, CascadeEntry{Source: "project", Path: projectConfig})
	}

	for i := range entries {
		if _, err := os.Stat(entries[i].Path); err == nil {
			entries[i].Exists = true
		}
	}
	return entries
}

// ActiveConfigFile returns the highest-precedence config file that exists on
// disk, or empty string when the tool is running on defaults alone. This is
// the file the config watcher follows during long sampling runs.
func ActiveConfigFile() string {
	active := ""
	for _, entry := range Cascade() {
		if entry.Exists {
			active = entry.Path
		}
	}
	return active
}

// mergeConfigFiles manually merges configuration files in the correct precedence order
// Precedence (lowest to highest): system < user < project < env vars
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	// Ensure ~/.gwa directory exists
	os.MkdirAll(filepath.Join(homeDir, ".gwa"), DefaultDirPermissions)

	for _, entry := range Cascade() {
		if !entry.Exists {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(entry.Path)
		tempViper.SetConfigType("toml")

		if err := tempViper.ReadInConfig(); err == nil {
			// Merge this config into the main viper instance
			for key, value := range tempViper.AllSettings() {
				v.Set(key, value)
			}
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	v := initViper()
	return v.Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	v := initViper()
	return v.GetString(key)
}

// GetBool returns a configuration value as bool using dot notation
func GetBool(key string) bool {
	v := initViper()
	return v.GetBool(key)
}

// GetInt returns a configuration value as int using dot notation
func GetInt(key string) int {
	v := initViper()
	return v.GetInt(key)
}

// GetFloat64 returns a configuration value as float64 using dot notation
func GetFloat64(key string) float64 {
	v := initViper()
	return v.GetFloat64(key)
}

// GetCatalogPath returns the configured run catalog path
func GetCatalogPath() (string, error) {
	// Environment override for dev and test runs
	if path := os.Getenv("GWA_CATALOG_PATH"); path != "" {
		return path, nil
	}

	config, err := Load()
	if err != nil {
		return "", err
	}
	if config.Catalog.Path == "" {
		return DefaultCatalogPath(), nil
	}
	return config.Catalog.Path, nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Hazboun6/gwa/config"
	"github.com/Hazboun6/gwa/sym"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: sym.Config + " Manage gwa configuration",
	Long: sym.Config + ` config — Manage gwa configuration

Display and manage gwa configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (GWA_* prefix)
3. Project config (./gwa.toml or ./config.toml)
4. User config (~/.gwa/gwa.toml or ~/.gwa/config.toml)
5. System config (/etc/gwa/config.toml)
6. Default values

Examples:
  gwa config show                     # Show current configuration
  gwa config show --format json       # Show configuration in JSON format
  gwa config get data.dir             # Get specific config value
  gwa config set sampler.iterations 500000
  gwa config validate                 # Validate current configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current gwa configuration from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., data.dir, sampler.iterations)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a configuration value to the user config",
	Long: `Write a configuration value to ~/.gwa/gwa.toml.

The previous file is kept as a timestamped backup next to it. Values set
here sit below project configs and environment variables in precedence.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current gwa configuration is valid",
	RunE:  runConfigValidate,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files were checked.

Lists all configuration sources in order of precedence, showing
which files exist and which are missing.`,
	RunE: runConfigWhere,
}

var configFormat string

func init() {
	// Add flags
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	// Add subcommands
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configSetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWhereCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Marshal to requested format
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# gwa configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# gwa configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	// Check if key exists in configuration
	v := config.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	// Get the value as interface{} to preserve type
	value := config.Get(key)
	fmt.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	// Route through the typed helpers where they exist so their
	// validation applies; everything else is persisted verbatim.
	var err error
	switch key {
	case "data.dir":
		err = config.UpdateDataDir(value)
	case "output.dir":
		err = config.UpdateOutputDir(value)
	case "sampler.iterations":
		n, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("sampler.iterations must be an integer, got %q", value)
		}
		err = config.UpdateSamplerIterations(n)
	default:
		err = config.SetUserValue(key, value)
	}
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}

	fmt.Printf("%s %s = %s written to %s\n", sym.OK, key, value, config.GetUserConfigPath())
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Printf("%s Configuration is valid\n", sym.OK)
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	fmt.Println("  2. [SYSTEM]   /etc/gwa/config.toml")
	fmt.Println("  3. [USER]     ~/.gwa/gwa.toml")
	fmt.Println("  4. [USER]     ~/.gwa/config.toml (older name)")
	fmt.Println("  5. [PROJECT]  ./gwa.toml or ./config.toml (searches up directories)")
	fmt.Println("  6. [ENV]      GWA_* environment variables")
	fmt.Println()

	fmt.Println("Files checked:")
	for _, entry := range config.Cascade() {
		marker := sym.Fail
		if entry.Exists {
			marker = sym.OK
		}
		fmt.Printf("  %s [%s] %s\n", marker, entry.Source, entry.Path)
	}

	return nil
}

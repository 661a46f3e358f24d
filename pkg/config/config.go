package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".pilotdeck"
	DefaultConfigFile = "config.yaml"
)

// Config holds the CLI configuration
type Config struct {
	environment      Environment
	envConfig        *EnvConfig
	ServerURL        string // Overrides the environment's API base URL when set
	AdminToken       string // Sent as X-PM-Token on /admin endpoints
	AgentToken       string // Sent as X-PM-Agent-Token on /agent endpoints
	SkipVersionCheck bool
	LogLevel         string
	RequestTimeout   time.Duration // Per-request timeout for deploy polling; 0 waits on the transport
	TelemetryEnabled *bool         // Pointer to distinguish between unset (nil) and explicitly set (true/false)
}

// ValidUserFacingConfigKeys lists config keys that users should interact with
var ValidUserFacingConfigKeys = map[string]bool{
	// Global settings
	"skipversioncheck": true,
	"loglevel":         true,
	"telemetry":        true,
	"requesttimeout":   true,

	// Environment-specific settings
	"server":     true,
	"admintoken": true,
	"agenttoken": true,
}

// secretKeys are masked by `config list` and `config get`
var secretKeys = map[string]bool{
	"admintoken": true,
	"agenttoken": true,
}

// IsValidUserFacingKey checks if a config key is a recognized user-facing key
func IsValidUserFacingKey(key string) bool {
	return ValidUserFacingConfigKeys[key]
}

// IsSecretKey reports whether the value of key should be masked on output
func IsSecretKey(key string) bool {
	return secretKeys[key]
}

// GetConfigKeyDescription returns a description for a config key
func GetConfigKeyDescription(key string) string {
	descriptions := map[string]string{
		"skipversioncheck": "Disable automatic version update checks (true/false)",
		"loglevel":         "Logging level (debug/info/warn/error, default: info)",
		"telemetry":        "Enable error telemetry and crash reporting (true/false, default: true)",
		"requesttimeout":   "Per-request timeout while watching a deploy, e.g. 15s (default: none)",
		"server":           "PilotDeck API base URL, e.g. https://pm.example.com/api",
		"admintoken":       "Admin token (PM_ADMIN_TOKEN) for deploy and ops commands",
		"agenttoken":       "Agent token (PM_AGENT_TOKEN) for agent commands, if the server requires one",
	}
	return descriptions[key]
}

// GetEnvironmentPrefixedKey returns the key with environment prefix
// Users work with unprefixed keys (e.g., "server"); this adds the prefix
// (e.g., "dev-server") for non-prod environments.
func GetEnvironmentPrefixedKey(key string, env Environment) string {
	globalKeys := map[string]bool{
		"skipversioncheck": true,
		"loglevel":         true,
		"telemetry":        true,
		"requesttimeout":   true,
	}

	if globalKeys[key] {
		return key
	}

	return getKeyPrefix(env) + key
}

// GetUserFacingKeys returns the list of keys users should interact with
func GetUserFacingKeys() []string {
	return []string{
		"server",
		"admin-token",
		"agent-token",
		"request-timeout",
		"skip-version-check",
		"log-level",
		"telemetry",
	}
}

// Load reads the configuration from ~/.pilotdeck/config.yaml
func Load() (*Config, error) {
	env := GetEnvironment()
	envConfig, err := GetEnvConfig(env)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment config: %w", err)
	}

	configPath := getConfigPath()
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Create config file if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := ensureConfigDir(); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := viper.WriteConfig(); err != nil {
			return nil, fmt.Errorf("failed to create config file: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	prefix := getKeyPrefix(env)

	config := &Config{
		environment:      env,
		envConfig:        envConfig,
		ServerURL:        viper.GetString(prefix + "server"),
		AdminToken:       viper.GetString(prefix + "admintoken"),
		AgentToken:       viper.GetString(prefix + "agenttoken"),
		SkipVersionCheck: viper.GetBool("skipversioncheck"),
		LogLevel:         viper.GetString("loglevel"),
	}

	if raw := viper.GetString("requesttimeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid requesttimeout %q: %w", raw, err)
		}
		config.RequestTimeout = timeout
	}

	if viper.IsSet("telemetry") {
		telemetryEnabled := viper.GetBool("telemetry")
		config.TelemetryEnabled = &telemetryEnabled
	}

	return config, nil
}

// New builds a Config without touching the config file. Used by tests and
// by callers that already know where the server lives.
func New(env Environment, serverURL, adminToken string) (*Config, error) {
	envConfig, err := GetEnvConfig(env)
	if err != nil {
		return nil, fmt.Errorf("failed to get environment config: %w", err)
	}
	return &Config{
		environment: env,
		envConfig:   envConfig,
		ServerURL:   serverURL,
		AdminToken:  adminToken,
	}, nil
}

// IsTelemetryEnabled returns whether telemetry is enabled.
// Returns true by default if not explicitly set (opt-out model).
func (c *Config) IsTelemetryEnabled() bool {
	if envVal := os.Getenv("PILOTDECK_TELEMETRY_DISABLED"); envVal != "" {
		return envVal != "true" && envVal != "1"
	}

	if c.TelemetryEnabled != nil {
		return *c.TelemetryEnabled
	}

	return true
}

// Save writes the current configuration to disk
func Save(config *Config) error {
	prefix := getKeyPrefix(config.environment)

	viper.Set(prefix+"server", config.ServerURL)
	viper.Set(prefix+"admintoken", config.AdminToken)
	viper.Set(prefix+"agenttoken", config.AgentToken)
	viper.Set("skipversioncheck", config.SkipVersionCheck)
	viper.Set("loglevel", config.LogLevel)
	if config.RequestTimeout > 0 {
		viper.Set("requesttimeout", config.RequestTimeout.String())
	}

	if config.TelemetryEnabled != nil {
		viper.Set("telemetry", *config.TelemetryEnabled)
	}

	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return getConfigPath()
}

func getConfigPath() string {
	if path := os.Getenv("PILOTDECK_CONFIG_PATH"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", DefaultConfigDir, DefaultConfigFile)
	}

	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFile)
}

// Context key for storing config
type contextKey string

const configContextKey contextKey = "config"

// GetConfigFromContext retrieves the config from the command context
func GetConfigFromContext(cmd *cobra.Command) (*Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("no context available")
	}

	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}

	return cfg, nil
}

// GetContextKey returns the context key used for storing config
func GetContextKey() interface{} {
	return configContextKey
}

// GetAPIBaseURL returns the REST root the client should talk to.
// PILOTDECK_SERVER_URL wins over the config file, which wins over the
// environment default.
func (c *Config) GetAPIBaseURL() string {
	if url := os.Getenv("PILOTDECK_SERVER_URL"); url != "" {
		return strings.TrimRight(url, "/")
	}
	if c.ServerURL != "" {
		return strings.TrimRight(c.ServerURL, "/")
	}
	if c.envConfig != nil {
		return strings.TrimRight(c.envConfig.APIBaseURL, "/")
	}
	return ""
}

// GetAdminToken returns the admin token, preferring PM_ADMIN_TOKEN from the
// environment so the same variable the server reads also works here.
func (c *Config) GetAdminToken() string {
	if token := strings.TrimSpace(os.Getenv("PM_ADMIN_TOKEN")); token != "" {
		return token
	}
	return strings.TrimSpace(c.AdminToken)
}

// GetAgentToken returns the agent token, preferring PM_AGENT_TOKEN. Empty is
// valid: agent endpoints are open unless the server sets a token.
func (c *Config) GetAgentToken() string {
	if token := strings.TrimSpace(os.Getenv("PM_AGENT_TOKEN")); token != "" {
		return token
	}
	return strings.TrimSpace(c.AgentToken)
}

func ensureConfigDir() error {
	configPath := getConfigPath()
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0700) // Holds the admin token
}

func getKeyPrefix(env Environment) string {
	if env == EnvProd {
		return ""
	}
	return string(env) + "-"
}

// GetEnvConfig returns the environment configuration
func (c *Config) GetEnvConfig() *EnvConfig {
	return c.envConfig
}

// GetLogLevel returns the configured log level as slog.Level
// Defaults to Info if not set or invalid
func (c *Config) GetLogLevel() slog.Level {
	if c.LogLevel == "" {
		return slog.LevelInfo
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

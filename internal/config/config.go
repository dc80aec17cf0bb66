package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/barnabasJ/ash-ai/internal/paths"
)

// EnvPrefix prefixes environment overrides, e.g. ASH_AI_APPLICATION.
const EnvPrefix = "ASH_AI"

// Endpoint mounts one tool set at an HTTP path.
type Endpoint struct {
	Path string `mapstructure:"path"`
	// Tools is the endpoint's allow-list. Nil exposes every tool.
	Tools []string `mapstructure:"tools"`
}

// HTTPConfig configures the streamable HTTP front end.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config represents the full ash-ai configuration
type Config struct {
	Application string `mapstructure:"application"`
	DomainsDir  string `mapstructure:"domains_dir"`
	// Domains lists the domains to load, in order. Empty loads all.
	Domains []string `mapstructure:"domains"`
	// Tools is the allow-list for stdio and the default endpoint. Nil
	// exposes every tool; an empty list exposes none.
	Tools             []string   `mapstructure:"tools"`
	ValidateArguments bool       `mapstructure:"validate_arguments"`
	HTTP              HTTPConfig `mapstructure:"http"`
	Endpoints         []Endpoint `mapstructure:"endpoints"`
	Actor             string     `mapstructure:"actor"`
	Tenant            string     `mapstructure:"tenant"`
}

// DefaultApplication names the application when none is configured.
const DefaultApplication = "ash-ai"

// DefaultEndpointPath is where the default tool set is mounted over HTTP.
const DefaultEndpointPath = "/mcp"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("application", DefaultApplication)
	v.SetDefault("domains_dir", "")
	v.SetDefault("domains", []string{})
	v.SetDefault("validate_arguments", true)
	v.SetDefault("http.addr", "")
	v.SetDefault("actor", "")
	v.SetDefault("tenant", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads the configuration file at configPath, applying
// environment overrides and then any bound flags. An empty configPath
// reads config.yaml from the base directory if it exists.
func LoadConfig(configPath string, flags map[string]*pflag.Flag) (*Config, error) {
	v := newViper()
	for key, flag := range flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	if configPath == "" {
		defaultPath, err := paths.GetConfigPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(defaultPath); err == nil {
			configPath = defaultPath
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyAllowLists(v, &config)

	if err := expandEnvVars(&config); err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	return &config, nil
}

// applyAllowLists keeps the difference between an absent allow-list (all
// tools) and an empty one (no tools), which decoding alone does not.
func applyAllowLists(v *viper.Viper, config *Config) {
	if v.IsSet("tools") && config.Tools == nil {
		config.Tools = []string{}
	}
	if !v.IsSet("tools") {
		config.Tools = nil
	}

	raw, _ := v.Get("endpoints").([]any)
	for i := range config.Endpoints {
		if i >= len(raw) {
			break
		}
		entry, _ := raw[i].(map[string]any)
		_, present := entry["tools"]
		switch {
		case !present:
			config.Endpoints[i].Tools = nil
		case config.Endpoints[i].Tools == nil:
			config.Endpoints[i].Tools = []string{}
		}
	}
}

// expandEnvVars performs ${VAR} expansion on all string values in the config
func expandEnvVars(config *Config) error {
	fields := []*string{
		&config.Application,
		&config.DomainsDir,
		&config.HTTP.Addr,
		&config.Actor,
		&config.Tenant,
	}
	for _, field := range fields {
		expanded, err := expandString(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	for i, endpoint := range config.Endpoints {
		expanded, err := expandString(endpoint.Path)
		if err != nil {
			return fmt.Errorf("error expanding path for endpoint %d: %w", i, err)
		}
		config.Endpoints[i].Path = expanded
	}

	return nil
}

// envVarPattern matches ${VAR_NAME} patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandString expands ${VAR} environment variable references in a string.
// Unset variables expand to the empty string.
func expandString(s string) (string, error) {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	}), nil
}

// EffectiveEndpoints returns the configured endpoints, or a single default
// endpoint serving the top-level allow-list when none are configured.
func (c *Config) EffectiveEndpoints() []Endpoint {
	if len(c.Endpoints) > 0 {
		return c.Endpoints
	}
	return []Endpoint{{Path: DefaultEndpointPath, Tools: c.Tools}}
}

// Validate checks the configuration for basic validity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Application) == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	seen := make(map[string]bool, len(c.Endpoints))
	for i, endpoint := range c.Endpoints {
		if !strings.HasPrefix(endpoint.Path, "/") {
			return fmt.Errorf("endpoint %d: path %q must start with /", i, endpoint.Path)
		}
		if seen[endpoint.Path] {
			return fmt.Errorf("endpoint %d: duplicate path %s", i, endpoint.Path)
		}
		seen[endpoint.Path] = true
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BLOG_TENANT", "acme")

	configPath := writeConfig(t, `
application: blog
domains_dir: /srv/domains
domains: [blog, notes]
tools: [create_post, list_posts]
validate_arguments: false
http:
  addr: 127.0.0.1:9000
endpoints:
  - path: /mcp
  - path: /mcp/readonly
    tools: [list_posts]
  - path: /mcp/none
    tools: []
actor: u1
tenant: ${BLOG_TENANT}
`)

	config, err := LoadConfig(configPath, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Application != "blog" {
		t.Errorf("Expected application 'blog', got '%s'", config.Application)
	}
	if config.DomainsDir != "/srv/domains" {
		t.Errorf("Expected domains_dir '/srv/domains', got '%s'", config.DomainsDir)
	}
	if !reflect.DeepEqual(config.Domains, []string{"blog", "notes"}) {
		t.Errorf("Unexpected domains: %v", config.Domains)
	}
	if !reflect.DeepEqual(config.Tools, []string{"create_post", "list_posts"}) {
		t.Errorf("Unexpected tools: %v", config.Tools)
	}
	if config.ValidateArguments {
		t.Error("Expected validate_arguments to be false")
	}
	if config.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("Expected http.addr '127.0.0.1:9000', got '%s'", config.HTTP.Addr)
	}
	if config.Tenant != "acme" {
		t.Errorf("Expected tenant expanded to 'acme', got '%s'", config.Tenant)
	}

	if len(config.Endpoints) != 3 {
		t.Fatalf("Expected 3 endpoints, got %d", len(config.Endpoints))
	}
	if config.Endpoints[0].Tools != nil {
		t.Errorf("Endpoint without tools should expose all, got %v", config.Endpoints[0].Tools)
	}
	if !reflect.DeepEqual(config.Endpoints[1].Tools, []string{"list_posts"}) {
		t.Errorf("Unexpected readonly tools: %v", config.Endpoints[1].Tools)
	}
	if config.Endpoints[2].Tools == nil || len(config.Endpoints[2].Tools) != 0 {
		t.Errorf("Endpoint with empty tools should expose none, got %#v", config.Endpoints[2].Tools)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	configPath := writeConfig(t, "domains: [blog]\n")

	config, err := LoadConfig(configPath, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Application != DefaultApplication {
		t.Errorf("Expected default application, got '%s'", config.Application)
	}
	if !config.ValidateArguments {
		t.Error("validate_arguments should default to true")
	}
	if config.Tools != nil {
		t.Errorf("Absent tools should be nil, got %#v", config.Tools)
	}
	if config.HTTP.Addr != "" {
		t.Errorf("Expected empty http.addr, got '%s'", config.HTTP.Addr)
	}
}

func TestLoadConfig_EmptyToolsList(t *testing.T) {
	configPath := writeConfig(t, "tools: []\n")

	config, err := LoadConfig(configPath, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Tools == nil || len(config.Tools) != 0 {
		t.Errorf("Empty tools should be a non-nil empty list, got %#v", config.Tools)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ASH_AI_APPLICATION", "from-env")
	t.Setenv("ASH_AI_HTTP_ADDR", ":7070")
	configPath := writeConfig(t, "application: from-file\n")

	config, err := LoadConfig(configPath, nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Application != "from-env" {
		t.Errorf("Expected env override, got '%s'", config.Application)
	}
	if config.HTTP.Addr != ":7070" {
		t.Errorf("Expected env http.addr, got '%s'", config.HTTP.Addr)
	}
}

func TestLoadConfig_FlagOverride(t *testing.T) {
	configPath := writeConfig(t, "actor: file-actor\ntenant: file-tenant\n")

	flags := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	flags.String("actor", "", "")
	flags.String("tenant", "", "")
	if err := flags.Parse([]string{"--actor", "flag-actor"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	config, err := LoadConfig(configPath, map[string]*pflag.Flag{
		"actor":  flags.Lookup("actor"),
		"tenant": flags.Lookup("tenant"),
	})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Actor != "flag-actor" {
		t.Errorf("Expected flag override, got '%s'", config.Actor)
	}
	if config.Tenant != "file-tenant" {
		t.Errorf("Unchanged flag should not override file, got '%s'", config.Tenant)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadConfig_NoDefaultFile(t *testing.T) {
	t.Setenv("ASH_AI_DIR", t.TempDir())

	config, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Application != DefaultApplication {
		t.Errorf("Expected defaults without a config file, got '%s'", config.Application)
	}
}

func TestLoadConfig_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASH_AI_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("application: stored\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig("", nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Application != "stored" {
		t.Errorf("Expected application from default file, got '%s'", config.Application)
	}
}

func TestExpandString(t *testing.T) {
	t.Setenv("TEST_VAR", "test-value")
	t.Setenv("ANOTHER_VAR", "another-value")

	tests := []struct {
		input    string
		expected string
	}{
		{"no vars", "no vars"},
		{"${TEST_VAR}", "test-value"},
		{"prefix-${TEST_VAR}-suffix", "prefix-test-value-suffix"},
		{"${TEST_VAR} and ${ANOTHER_VAR}", "test-value and another-value"},
		{"${NONEXISTENT_VAR}", ""},
		{"$TEST_VAR", "$TEST_VAR"},
	}

	for _, test := range tests {
		result, err := expandString(test.input)
		if err != nil {
			t.Errorf("expandString(%q) failed: %v", test.input, err)
			continue
		}
		if result != test.expected {
			t.Errorf("expandString(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestEffectiveEndpoints(t *testing.T) {
	config := &Config{Tools: []string{"a"}}
	endpoints := config.EffectiveEndpoints()
	if len(endpoints) != 1 || endpoints[0].Path != DefaultEndpointPath {
		t.Fatalf("Expected single default endpoint, got %v", endpoints)
	}
	if !reflect.DeepEqual(endpoints[0].Tools, []string{"a"}) {
		t.Errorf("Default endpoint should carry top-level tools, got %v", endpoints[0].Tools)
	}

	config.Endpoints = []Endpoint{{Path: "/x"}}
	if got := config.EffectiveEndpoints(); len(got) != 1 || got[0].Path != "/x" {
		t.Errorf("Configured endpoints should win, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		shouldErr bool
	}{
		{"valid", Config{Application: "blog", Endpoints: []Endpoint{{Path: "/mcp"}}}, false},
		{"empty application", Config{Application: " "}, true},
		{"relative path", Config{Application: "blog", Endpoints: []Endpoint{{Path: "mcp"}}}, true},
		{"duplicate path", Config{Application: "blog", Endpoints: []Endpoint{{Path: "/mcp"}, {Path: "/mcp"}}}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.config.Validate()
			if test.shouldErr && err == nil {
				t.Error("Expected validation error")
			}
			if !test.shouldErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcncl/textjson/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.True(t, cfg.PrettyPrint)
	assert.True(t, cfg.CombineArrays)
	assert.False(t, cfg.Repair)
	assert.Equal(t, "none", cfg.Highlight)
	assert.Equal(t, 200, cfg.PreviewLength)
	assert.Equal(t, 3*time.Second, cfg.Notifications.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Notifications.ErrorTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Server.Delay)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
pretty_print: false
combine_arrays: false
highlight: html
delay: 250ms
preview_length: 80
notifications:
  error_timeout: 10s
server:
  addr: "127.0.0.1:9000"
`
	path := writeConfig(t, t.TempDir(), "textjson.yml", yamlContent)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.PrettyPrint)
	assert.False(t, cfg.CombineArrays)
	assert.Equal(t, "html", cfg.Highlight)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, 80, cfg.PreviewLength)
	assert.Equal(t, 10*time.Second, cfg.Notifications.ErrorTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 3*time.Second, cfg.Notifications.Timeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestConfig_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.ErrorIs(t, err, &errors.AppError{Type: errors.ErrorTypeConfig})

	bad := writeConfig(t, dir, "bad.yml", "pretty_print: [oops")
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := writeConfig(t, dir, "invalid.yml", "highlight: rainbow")
	_, err = LoadConfig(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "highlight must be one of")
}

func TestFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	expected := writeConfig(t, root, ".textjson.yml", "repair: true\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(wd) }()
	require.NoError(t, os.Chdir(nested))

	found := FindConfigFile()
	resolvedExpected, _ := filepath.EvalSymlinks(expected)
	resolvedFound, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, resolvedExpected, resolvedFound)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Repair)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TEXTJSON_PRETTY_PRINT", "false")
	t.Setenv("TEXTJSON_SERVER_ADDR", ":9999")
	t.Setenv("TEXTJSON_NOTIFICATIONS_ERROR_TIMEOUT", "7s")

	cfg := NewConfig()
	require.NoError(t, ApplyEnv(cfg))

	assert.False(t, cfg.PrettyPrint)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 7*time.Second, cfg.Notifications.ErrorTimeout)
	// unset variables leave values alone
	assert.True(t, cfg.CombineArrays)
	assert.Equal(t, 200, cfg.PreviewLength)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("TEXTJSON_DELAY", "soon")
	assert.Error(t, ApplyEnv(NewConfig()))
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, cfg *Config)
	}{
		{"prettyPrint", "false", func(t *testing.T, cfg *Config) { assert.False(t, cfg.PrettyPrint) }},
		{"pretty-print", "false", func(t *testing.T, cfg *Config) { assert.False(t, cfg.PrettyPrint) }},
		{"CombineArrays", "0", func(t *testing.T, cfg *Config) { assert.False(t, cfg.CombineArrays) }},
		{"repair", "true", func(t *testing.T, cfg *Config) { assert.True(t, cfg.Repair) }},
		{"highlight", "ansi", func(t *testing.T, cfg *Config) { assert.Equal(t, "ansi", cfg.Highlight) }},
		{"delay", "1s", func(t *testing.T, cfg *Config) { assert.Equal(t, time.Second, cfg.Delay) }},
		{"previewLength", "10", func(t *testing.T, cfg *Config) { assert.Equal(t, 10, cfg.PreviewLength) }},
		{"notificationsErrorTimeout", "9s", func(t *testing.T, cfg *Config) {
			assert.Equal(t, 9*time.Second, cfg.Notifications.ErrorTimeout)
		}},
		{"server_addr", ":1234", func(t *testing.T, cfg *Config) { assert.Equal(t, ":1234", cfg.Server.Addr) }},
		{"debug", "true", func(t *testing.T, cfg *Config) { assert.True(t, cfg.Dev.Debug) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := NewConfig()
			require.NoError(t, cfg.Set(tt.key, tt.value))
			tt.check(t, cfg)
		})
	}
}

func TestConfig_SetErrors(t *testing.T) {
	cfg := NewConfig()

	err := cfg.Set("colour", "red")
	assert.ErrorIs(t, err, errors.ErrUnknownOption)

	assert.Error(t, cfg.Set("pretty_print", "maybe"))
	assert.Error(t, cfg.Set("highlight", "rainbow"))
	assert.Error(t, cfg.Set("preview_length", "0"))
}

func TestConfig_ApplyOverrides(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.ApplyOverrides([]string{"prettyPrint=false", "highlight=html"}))
	assert.False(t, cfg.PrettyPrint)
	assert.Equal(t, "html", cfg.Highlight)

	assert.Error(t, cfg.ApplyOverrides([]string{"novalue"}))
}

package config

import (
	"testing"
	"time"

	"github.com/glorpus-work/gleam-pkg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, cfg *Config)
		wantErr error
	}{
		{
			name:  "api base",
			key:   "registry.api_base",
			value: "http://localhost:4000/api/",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:4000/api/", cfg.Registry.APIBase)
			},
		},
		{
			name:  "http timeout",
			key:   "registry.http_timeout",
			value: "1m",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Minute, cfg.Registry.HTTPTimeout)
			},
		},
		{
			name:  "version query",
			key:   "toolchain.version_query",
			value: "echo 27",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"echo", "27"}, cfg.Toolchain.VersionQuery)
			},
		},
		{
			name:    "unknown key",
			key:     "settings.color",
			value:   "true",
			wantErr: errors.ErrUnknownConfigKey,
		},
		{
			name:    "invalid log level is rejected",
			key:     "settings.log_level",
			value:   "loud",
			wantErr: errors.ErrInvalidLogLevel,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Settings.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.SetValue(tt.key, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestGetValue(t *testing.T) {
	cfg := DefaultConfig()

	v, err := cfg.GetValue("toolchain.plugin")
	require.NoError(t, err)
	assert.Equal(t, "gleescript", v)

	v, err = cfg.GetValue("registry.http_timeout")
	require.NoError(t, err)
	assert.Equal(t, "0s", v)

	_, err = cfg.GetValue("nope")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestToMap(t *testing.T) {
	m := DefaultConfig().ToMap()

	assert.Len(t, m, len(Keys()))
	assert.Equal(t, "https://repo.hex.pm/", m["registry.repository_base"])
	assert.Equal(t, "info", m["settings.log_level"])
	assert.Equal(t, Keys()[0], "registry.api_base")
}

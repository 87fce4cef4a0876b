package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glorpus-work/gleam-pkg/pkg/errors"
)

// Keys lists every key accepted by SetValue and GetValue, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accessor struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

func stringField(field func(c *Config) *string) accessor {
	return accessor{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, value string) error {
			*field(c) = value
			return nil
		},
	}
}

var accessors = map[string]accessor{
	"registry.api_base":        stringField(func(c *Config) *string { return &c.Registry.APIBase }),
	"registry.repository_base": stringField(func(c *Config) *string { return &c.Registry.RepositoryBase }),
	"registry.user_agent":      stringField(func(c *Config) *string { return &c.Registry.UserAgent }),
	"registry.resolution":      stringField(func(c *Config) *string { return &c.Registry.Resolution }),
	"registry.http_timeout": {
		get: func(c *Config) string { return c.Registry.HTTPTimeout.String() },
		set: func(c *Config, value string) error {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration value for registry.http_timeout: %s", value)
			}
			c.Registry.HTTPTimeout = d
			return nil
		},
	},
	"toolchain.gleam":      stringField(func(c *Config) *string { return &c.Toolchain.Gleam }),
	"toolchain.plugin":     stringField(func(c *Config) *string { return &c.Toolchain.Plugin }),
	"toolchain.output_dir": stringField(func(c *Config) *string { return &c.Toolchain.OutputDir }),
	"toolchain.version_query": {
		get: func(c *Config) string { return strings.Join(c.Toolchain.VersionQuery, " ") },
		set: func(c *Config, value string) error {
			fields := strings.Fields(value)
			if len(fields) == 0 {
				return fmt.Errorf("toolchain.version_query cannot be empty")
			}
			c.Toolchain.VersionQuery = fields
			return nil
		},
	},
	"settings.root_dir":   stringField(func(c *Config) *string { return &c.Settings.RootDir }),
	"settings.hooks_dir":  stringField(func(c *Config) *string { return &c.Settings.HooksDir }),
	"settings.log_level":  stringField(func(c *Config) *string { return &c.Settings.LogLevel }),
	"settings.log_format": stringField(func(c *Config) *string { return &c.Settings.LogFormat }),
}

// SetValue sets a configuration value by its dotted key, e.g. "registry.api_base".
// The resulting configuration is validated; on failure the previous value is kept.
// toolchain.version_query is split on whitespace, so arguments containing
// spaces must be edited in the YAML file directly.
func (c *Config) SetValue(key, value string) error {
	acc, ok := accessors[key]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	previous := *c
	previous.Toolchain.VersionQuery = append([]string(nil), c.Toolchain.VersionQuery...)
	if err := acc.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		*c = previous
		return err
	}
	return nil
}

// GetValue returns a configuration value by its dotted key.
func (c *Config) GetValue(key string) (string, error) {
	acc, ok := accessors[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return acc.get(c), nil
}

// ToMap returns every configuration value keyed by its dotted key.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(accessors))
	for key, acc := range accessors {
		result[key] = acc.get(c)
	}
	return result
}

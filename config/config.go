// Package config loads relay.Options from a YAML file and environment
// variables, the way the teacher's own common/config package loads
// every TelHawk service's configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/telhawk-systems/relay.go"
	"github.com/telhawk-systems/relay.go/internal/logging"
)

// FileConfig is the on-disk/environment shape, deliberately flatter
// than relay.Options: durations are plain strings so YAML and env vars
// stay human-writable, and Hosts is a list of endpoint strings
// ("host:port" or "user:pass@host:port") rather than structured
// Endpoint values.
type FileConfig struct {
	Hosts              []string `mapstructure:"hosts"`
	AutomaticReconnect bool     `mapstructure:"automatic_reconnect"`
	ReconnectWait      string   `mapstructure:"reconnect_wait"`
	ConnectTimeout     string   `mapstructure:"connect_timeout"`
	Pedantic           bool     `mapstructure:"pedantic"`
	MaxFrameSize       int      `mapstructure:"max_frame_size"`
	DrainTimeout       string   `mapstructure:"drain_timeout"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// Load reads configuration from path (falling back to defaults and
// environment variables if the file does not exist, the same
// best-effort behavior as the teacher's config.Load) and returns a
// ready-to-use relay.Options. Environment variables use the RELAY_
// prefix, e.g. RELAY_HOSTS, RELAY_RECONNECT_WAIT.
func Load(path string) (relay.Options, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("relay")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
			return relay.Options{}, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return relay.Options{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return relay.Options{}, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	return fc.toOptions()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hosts", []string{"localhost:4222"})
	v.SetDefault("automatic_reconnect", true)
	v.SetDefault("reconnect_wait", "2s")
	v.SetDefault("connect_timeout", "5s")
	v.SetDefault("pedantic", false)
	v.SetDefault("max_frame_size", 1048576)
	v.SetDefault("drain_timeout", "5s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func (fc FileConfig) toOptions() (relay.Options, error) {
	opts := relay.DefaultOptions()

	hosts := make([]relay.Endpoint, 0, len(fc.Hosts))
	for _, raw := range fc.Hosts {
		hosts = append(hosts, parseEndpoint(raw))
	}
	opts.Hosts = hosts
	opts.AutomaticReconnect = fc.AutomaticReconnect
	opts.Pedantic = fc.Pedantic
	opts.MaxFrameSize = fc.MaxFrameSize

	var err error
	if opts.ReconnectWaitTime, err = parseDuration(fc.ReconnectWait, opts.ReconnectWaitTime); err != nil {
		return relay.Options{}, err
	}
	if opts.ConnectTimeout, err = parseDuration(fc.ConnectTimeout, opts.ConnectTimeout); err != nil {
		return relay.Options{}, err
	}
	if opts.DrainTimeout, err = parseDuration(fc.DrainTimeout, opts.DrainTimeout); err != nil {
		return relay.Options{}, err
	}

	opts.Logger = logging.New(logging.ParseLevel(fc.Logging.Level), fc.Logging.Format)
	return opts, nil
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	return d, nil
}

// parseEndpoint splits an optional "user:pass@" prefix off a
// "host:port" address. Everything before the last "@" is taken as
// credentials; a credential segment without a ":" becomes the user
// name with an empty password. Nothing is rejected, consistent with
// this package's best-effort, defaults-first loading philosophy.
func parseEndpoint(raw string) relay.Endpoint {
	addr := raw
	var user, pass string

	if idx := strings.LastIndex(raw, "@"); idx >= 0 {
		creds := raw[:idx]
		addr = raw[idx+1:]
		if u, p, ok := strings.Cut(creds, ":"); ok {
			user, pass = u, p
		} else {
			user = creds
		}
	}

	return relay.Endpoint{Address: addr, User: user, Password: pass}
}

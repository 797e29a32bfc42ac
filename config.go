package cassorm

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/cassorm/adapter/cql"
	"github.com/arloliu/cassorm/types"
)

// Connection defaults applied when the corresponding setting is absent.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 7000
)

// Config is the key/value connection configuration.
//
// Every optional setting follows the same policy: it is applied only when
// present and valid, otherwise the driver default stays in effect. Invalid
// values are skipped with a warning unless Strict is set.
type Config struct {
	// Hosts are the contact points. Key "host" accepts a single address, a
	// comma-separated list, or a list. Defaults to 127.0.0.1.
	Hosts []string `mapstructure:"host" env:"HOST" envSeparator:","`

	// Port is the native protocol port. Defaults to 7000.
	Port int `mapstructure:"port" env:"PORT"`

	// Keyspace is required.
	Keyspace string `mapstructure:"keyspace" env:"KEYSPACE"`

	// PageSize is the number of rows per page; zero keeps the driver default.
	PageSize int `mapstructure:"page_size" env:"PAGE_SIZE"`

	// Consistency is a case-insensitive level name such as "LOCAL_QUORUM".
	Consistency string `mapstructure:"consistency" env:"CONSISTENCY"`

	// Timeout is the default per-statement deadline in whole seconds.
	Timeout int `mapstructure:"timeout" env:"TIMEOUT"`

	// ConnectTimeout bounds the initial connection, in fractional seconds.
	ConnectTimeout float64 `mapstructure:"connect_timeout" env:"CONNECT_TIMEOUT"`

	// RequestTimeout bounds each request on the wire, in fractional seconds.
	RequestTimeout float64 `mapstructure:"request_timeout" env:"REQUEST_TIMEOUT"`

	// Username and Password are applied only when both are non-empty.
	Username string `mapstructure:"username" env:"USERNAME"`
	Password string `mapstructure:"password" env:"PASSWORD"`

	// Strict turns skipped settings into configuration errors.
	Strict bool `mapstructure:"strict" env:"STRICT"`
}

// ParseConfig decodes a key/value configuration map.
//
// Decoding is weakly typed: numeric settings may be given as strings, and
// empty strings count as absent. Unknown keys are ignored.
//
// Parameters:
//   - values: Settings keyed by host, port, keyspace, page_size, consistency,
//     timeout, connect_timeout, request_timeout, username, password, strict
//
// Returns:
//   - Config: The decoded configuration
//   - error: ConfigError if a value has the wrong shape
func ParseConfig(values map[string]any) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       hostListHook,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(values); err != nil {
		return Config{}, &types.ConfigError{Field: "config", Reason: err.Error()}
	}

	return cfg, nil
}

// LoadConfigFile reads a YAML file holding the same keys as ParseConfig.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - Config: The decoded configuration
//   - error: File, YAML, or ConfigError
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cassorm: read config: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return Config{}, fmt.Errorf("cassorm: parse config %s: %w", path, err)
	}

	return ParseConfig(values)
}

// ConfigFromEnv reads the configuration from environment variables.
//
// Variable names are the prefix followed by HOST, PORT, KEYSPACE, PAGE_SIZE,
// CONSISTENCY, TIMEOUT, CONNECT_TIMEOUT, REQUEST_TIMEOUT, USERNAME, PASSWORD
// and STRICT. HOST is comma-separated.
//
// Parameters:
//   - prefix: Variable prefix, e.g. "CASSANDRA_"
//
// Returns:
//   - Config: The decoded configuration
//   - error: ConfigError if a variable cannot be parsed
func ConfigFromEnv(prefix string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, &types.ConfigError{Field: "env", Reason: err.Error()}
	}
	cfg.Hosts = cleanHosts(cfg.Hosts)

	return cfg, nil
}

// Validate checks the settings that have no fallback.
//
// A missing keyspace, an empty contact point, or an out-of-range port is
// always an error. In strict mode every setting that would otherwise be
// skipped is an error too.
//
// Returns:
//   - error: *types.ConfigError, or nil if valid
func (c Config) Validate() error {
	if strings.TrimSpace(c.Keyspace) == "" {
		return &types.ConfigError{Field: "keyspace", Reason: "must not be empty"}
	}
	for _, host := range c.Hosts {
		if strings.TrimSpace(host) == "" {
			return &types.ConfigError{Field: "host", Reason: "contact point must not be empty"}
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &types.ConfigError{Field: "port", Reason: fmt.Sprintf("%d is out of range", c.Port)}
	}
	if !c.Strict {
		return nil
	}

	if c.Consistency != "" {
		if _, ok := types.ParseConsistency(c.Consistency); !ok {
			return &types.ConfigError{Field: "consistency", Reason: fmt.Sprintf("unknown level %q", c.Consistency)}
		}
	}
	if (c.Username == "") != (c.Password == "") {
		return &types.ConfigError{Field: "username", Reason: "username and password must be set together"}
	}
	switch {
	case c.PageSize < 0:
		return &types.ConfigError{Field: "page_size", Reason: "must not be negative"}
	case c.Timeout < 0:
		return &types.ConfigError{Field: "timeout", Reason: "must not be negative"}
	case c.ConnectTimeout < 0:
		return &types.ConfigError{Field: "connect_timeout", Reason: "must not be negative"}
	case c.RequestTimeout < 0:
		return &types.ConfigError{Field: "request_timeout", Reason: "must not be negative"}
	}

	return nil
}

// resolve turns the configuration into a driver-neutral cluster spec and the
// default per-statement deadline. Skipped settings are reported to logger.
func (c Config) resolve(logger types.Logger) (cql.ClusterSpec, time.Duration) {
	spec := cql.ClusterSpec{
		Hosts:    c.Hosts,
		Port:     c.Port,
		Keyspace: c.Keyspace,
	}
	if len(spec.Hosts) == 0 {
		spec.Hosts = []string{DefaultHost}
	}
	if spec.Port == 0 {
		spec.Port = DefaultPort
	}
	if c.PageSize > 0 {
		spec.PageSize = c.PageSize
	}
	if c.Consistency != "" {
		if level, ok := types.ParseConsistency(c.Consistency); ok {
			spec.Consistency = &level
		} else {
			logger.Warn("ignoring unknown consistency level", "consistency", c.Consistency)
		}
	}
	if c.ConnectTimeout > 0 {
		spec.ConnectTimeout = seconds(c.ConnectTimeout)
	}
	if c.RequestTimeout > 0 {
		spec.RequestTimeout = seconds(c.RequestTimeout)
	}

	switch {
	case c.Username != "" && c.Password != "":
		spec.Username = c.Username
		spec.Password = c.Password
		spec.Credentials = true
	case c.Username != "" || c.Password != "":
		logger.Warn("ignoring partial credentials, both username and password are required")
	}

	var timeout time.Duration
	if c.Timeout > 0 {
		timeout = time.Duration(c.Timeout) * time.Second
	}

	return spec, timeout
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

var stringSliceType = reflect.TypeOf([]string(nil))

// hostListHook accepts a single host, a comma-separated list, or a list.
func hostListHook(_, to reflect.Type, data any) (any, error) {
	if to != stringSliceType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		return cleanHosts(strings.Split(v, ",")), nil
	case []string:
		return cleanHosts(v), nil
	case []any:
		hosts := make([]string, 0, len(v))
		for _, h := range v {
			hosts = append(hosts, fmt.Sprint(h))
		}
		return cleanHosts(hosts), nil
	}

	return data, nil
}

func cleanHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil
	}

	return out
}

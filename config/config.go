// Package config holds the explicit configuration passed to clients, trackers and transfers.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PILOT_API_GATEWAY or PILOT_NOTIFY_ADDR.
const EnvPrefix = "PILOT"

// ErrMissingGateway is returned by Load when api_gateway is not set anywhere.
var ErrMissingGateway = errors.New("missing required config field: api_gateway")

// Config is constructed once and handed to the client constructors.
type Config struct {
	// APIGateway is the base URL of the platform, e.g. https://pilot.example.org/pilot.
	APIGateway string `mapstructure:"api_gateway"`

	// HPCEndpoint is the base URL of the compute gateway. Defaults to APIGateway.
	HPCEndpoint string `mapstructure:"hpc_endpoint"`

	Notify    Notify    `mapstructure:"notify"`
	Endpoints Endpoints `mapstructure:"endpoints"`
	Storage   Storage   `mapstructure:"storage"`

	// ChunkSize is the size of each upload chunk (default: 2MB).
	ChunkSize int64 `mapstructure:"chunk_size"`

	// PollInterval is the delay between job status polls (default: 2s).
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// PollTimeout bounds a polled wait (default: 10m).
	PollTimeout time.Duration `mapstructure:"poll_timeout"`

	// NotifyTimeout bounds a push-channel wait (default: 20s).
	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// Trace enables request and response logging on new clients.
	Trace bool `mapstructure:"trace"`
}

// Notify configures the Redis pub/sub notification channel.
type Notify struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Prefix is prepended to the namespace to form the Redis channel name.
	Prefix string `mapstructure:"prefix"`

	// Event is the notification event name trackers listen for.
	Event string `mapstructure:"event"`
}

// Storage configures the remote file systems transfers may read from or write to.
type Storage struct {
	S3 S3 `mapstructure:"s3"`
}

// S3 mirrors the subset of s3.Options exposed through configuration.
type S3 struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

// Default returns a Config with every default applied and no gateway.
func Default() Config {
	return Config{
		Notify: Notify{
			Addr:  "localhost:6379",
			Event: "DATASET_FILE_NOTIFICATION",
		},
		Endpoints:     DefaultEndpoints(),
		ChunkSize:     2 * 1024 * 1024, // 2MB default chunk size
		PollInterval:  2 * time.Second,
		PollTimeout:   10 * time.Minute,
		NotifyTimeout: 20 * time.Second,
		LogLevel:      "info",
	}
}

// Load reads path (json, yaml or toml by extension) when it is not empty, then applies
// PILOT_ environment overrides on top of Default. Environment variables take precedence
// over the file.
func Load(path string) (Config, error) {
	v := viper.New()

	for key, val := range flatten("", reflect.ValueOf(Default())) {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api_gateway")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("could not read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not unmarshal config: %w", err)
	}

	return cfg.normalize()
}

// normalize validates required fields and derives the optional ones. Zero fields take
// their value from Default.
func (c Config) normalize() (Config, error) {
	fillDefaults(reflect.ValueOf(&c).Elem(), reflect.ValueOf(Default()))
	if c.APIGateway == "" {
		return Config{}, ErrMissingGateway
	}
	c.APIGateway = strings.TrimRight(c.APIGateway, "/")
	if c.HPCEndpoint == "" {
		c.HPCEndpoint = c.APIGateway
	}
	c.HPCEndpoint = strings.TrimRight(c.HPCEndpoint, "/")
	if c.ChunkSize < 0 {
		return Config{}, fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	return c, nil
}

// WithGateway returns a copy of c pointing at gateway, validated the same way Load validates.
func (c Config) WithGateway(gateway string) (Config, error) {
	c.APIGateway = gateway
	return c.normalize()
}

// flatten walks a struct by its mapstructure tags and returns every leaf under its dotted key.
// AutomaticEnv only resolves keys viper already knows about.
func flatten(prefix string, val reflect.Value) map[string]any {
	out := map[string]any{}
	typ := val.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		fv := val.Field(i)
		if fv.Kind() == reflect.Struct {
			for k, v := range flatten(key, fv) {
				out[k] = v
			}
			continue
		}
		out[key] = fv.Interface()
	}
	return out
}

func fillDefaults(dst, def reflect.Value) {
	for i := range dst.NumField() {
		field := dst.Field(i)
		if field.Kind() == reflect.Struct {
			fillDefaults(field, def.Field(i))
			continue
		}
		if field.IsZero() && field.CanSet() {
			field.Set(def.Field(i))
		}
	}
}

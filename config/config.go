package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bucketfront"
	bfhttp "github.com/sagarc03/bucketfront/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for bucketfront.
type Config struct {
	Env      string            `mapstructure:"env" yaml:"env,omitempty"`
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Storage  StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Sign     SignConfig        `mapstructure:"sign" yaml:"sign"`
	Fallback FallbackConfig    `mapstructure:"fallback" yaml:"fallback"`
	Proxy    ProxyConfig       `mapstructure:"proxy" yaml:"proxy"`
	CORS     bfhttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Metrics  MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Log      LogConfig         `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	RootRedirect string `mapstructure:"root_redirect" yaml:"root_redirect,omitempty" validate:"omitempty,url"`
}

// StorageConfig describes the bucket and how to reach it.
type StorageConfig struct {
	Bucket       string `mapstructure:"bucket" yaml:"bucket" validate:"required"`
	Region       string `mapstructure:"region" yaml:"region" validate:"required"`
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	AccessKey    string `mapstructure:"access_key" yaml:"access_key" validate:"required"`
	SecretKey    string `mapstructure:"secret_key" yaml:"secret_key" validate:"required"`
	UsePathStyle bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
	Prefix       string `mapstructure:"prefix" yaml:"prefix"`
}

// SignConfig controls presigned URL lifetime and caching.
type SignConfig struct {
	Expires       time.Duration `mapstructure:"expires" yaml:"expires" validate:"required,gt=0"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"required,gt=0,ltfield=Expires"`
	CacheCapacity uint64        `mapstructure:"cache_capacity" yaml:"cache_capacity"`
}

// FallbackConfig controls SPA fallback resolution.
type FallbackConfig struct {
	Policy        string        `mapstructure:"policy" yaml:"policy" validate:"required,oneof=walkup first-level none"`
	HTMLExtension bool          `mapstructure:"html_extension" yaml:"html_extension"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl" validate:"required,gt=0"`
	CacheCapacity uint64        `mapstructure:"cache_capacity" yaml:"cache_capacity"`
}

// ProxyConfig holds upstream timeouts and response caching policy.
type ProxyConfig struct {
	AssetMaxAge  int           `mapstructure:"asset_max_age" yaml:"asset_max_age" validate:"min=0"`
	SignTimeout  time.Duration `mapstructure:"sign_timeout" yaml:"sign_timeout" validate:"min=0"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout" validate:"min=0"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// FallbackPolicy returns the parsed fallback policy.
func (c *Config) FallbackPolicy() bucketfront.FallbackPolicy {
	policy, err := bucketfront.ParseFallbackPolicy(c.Fallback.Policy)
	if err != nil {
		return bucketfront.FallbackWalkUp
	}
	return policy
}

// Redacted returns a copy of the config with credentials masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Storage.AccessKey = maskSecret(c.Storage.AccessKey)
	out.Storage.SecretKey = maskSecret(c.Storage.SecretKey)
	return &out
}

// maskSecret keeps the first and last 4 characters of long secrets.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":            "server.port",
	"bucket":          "storage.bucket",
	"prefix":          "storage.prefix",
	"fallback-policy": "fallback.policy",
	"log-level":       "log.level",
}

// legacyEnv lists the plain S3_* variable names accepted next to the
// BUCKETFRONT_ prefixed ones.
var legacyEnv = map[string]string{
	"storage.bucket":     "S3_BUCKET",
	"storage.region":     "S3_REGION",
	"storage.endpoint":   "S3_ENDPOINT",
	"storage.access_key": "S3_ACCESS_KEY_ID",
	"storage.secret_key": "S3_SECRET_ACCESS_KEY",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// bindEnv registers keys without defaults so AutomaticEnv can see them.
func bindEnv(v *viper.Viper) {
	for key, legacy := range legacyEnv {
		prefixed := "BUCKETFRONT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.root_redirect", "")

	v.SetDefault("storage.use_path_style", true)
	v.SetDefault("storage.prefix", bucketfront.DefaultPrefix)

	v.SetDefault("sign.expires", time.Hour)
	v.SetDefault("sign.cache_ttl", 30*time.Minute)
	v.SetDefault("sign.cache_capacity", 8192)

	v.SetDefault("fallback.policy", string(bucketfront.FallbackWalkUp))
	v.SetDefault("fallback.html_extension", true)
	v.SetDefault("fallback.cache_ttl", 60*time.Second)
	v.SetDefault("fallback.cache_capacity", 32768)

	v.SetDefault("proxy.asset_max_age", bucketfront.DefaultAssetMaxAge)
	v.SetDefault("proxy.sign_timeout", 5*time.Second)
	v.SetDefault("proxy.fetch_timeout", 30*time.Second)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "HEAD", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := read(configFiles, flags)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func read(configFiles []string, flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("BUCKETFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	return v
}

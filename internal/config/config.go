package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all CLI configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Backend BackendConfig `mapstructure:"backend"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig configures local segment files.
type StoreConfig struct {
	AtomicWrite bool `mapstructure:"atomic_write"`
	Sync        bool `mapstructure:"sync"`
	BufferSize  int  `mapstructure:"buffer_size"`
}

// BackendConfig selects and configures the blob store used by the remote
// commands.
type BackendConfig struct {
	// Kind is one of "local", "s3" or "minio".
	Kind  string         `mapstructure:"kind"`
	Local LocalConfig    `mapstructure:"local"`
	S3    S3Config       `mapstructure:"s3"`
	MinIO MinIOConfig    `mapstructure:"minio"`
	Cache CacheConfig    `mapstructure:"cache"`
	Limit ThrottleConfig `mapstructure:"limit"`
}

type LocalConfig struct {
	Root string `mapstructure:"root"`
}

type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type MinIOConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Secure       bool   `mapstructure:"secure"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	CreateBucket bool   `mapstructure:"create_bucket"`
}

// CacheConfig enables a block cache in front of remote reads. A zero
// capacity disables it.
type CacheConfig struct {
	Capacity  int64 `mapstructure:"capacity"`
	BlockSize int64 `mapstructure:"block_size"`
}

// ThrottleConfig limits remote read bandwidth. Zero values mean unlimited.
type ThrottleConfig struct {
	BytesPerSec        int64 `mapstructure:"bytes_per_sec"`
	MaxConcurrentReads int64 `mapstructure:"max_concurrent_reads"`
}

var (
	validLevels   = []string{"debug", "info", "warn", "error"}
	validFormats  = []string{"text", "json"}
	validBackends = []string{"local", "s3", "minio"}
)

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Log.Level != "" && !contains(validLevels, c.Log.Level) {
		warnings = append(warnings, fmt.Sprintf("log level '%s' is unknown, using info", c.Log.Level))
	}
	if c.Log.Format != "" && !contains(validFormats, c.Log.Format) {
		warnings = append(warnings, fmt.Sprintf("log format '%s' is unknown, using text", c.Log.Format))
	}
	if c.Store.BufferSize < 0 {
		warnings = append(warnings, fmt.Sprintf("store buffer_size %d is negative, using default", c.Store.BufferSize))
	}

	switch c.Backend.Kind {
	case "s3":
		if c.Backend.S3.Bucket == "" {
			warnings = append(warnings, "backend 's3' is configured but s3.bucket is empty")
		}
	case "minio":
		if c.Backend.MinIO.Endpoint == "" {
			warnings = append(warnings, "backend 'minio' is configured but minio.endpoint is empty")
		}
		if c.Backend.MinIO.Bucket == "" {
			warnings = append(warnings, "backend 'minio' is configured but minio.bucket is empty")
		}
	default:
		if !contains(validBackends, c.Backend.Kind) {
			warnings = append(warnings, fmt.Sprintf("backend kind '%s' is unknown", c.Backend.Kind))
		}
	}
	if c.Backend.Cache.Capacity < 0 {
		warnings = append(warnings, fmt.Sprintf("cache capacity %d is negative", c.Backend.Cache.Capacity))
	}
	return warnings
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// New returns a viper instance with defaults and VECSEG_* environment
// bindings. Nested keys map to variables with dots replaced by
// underscores, e.g. VECSEG_BACKEND_S3_BUCKET.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("VECSEG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("store.atomic_write", true)
	v.SetDefault("store.sync", false)
	v.SetDefault("store.buffer_size", 64*1024)
	v.SetDefault("backend.kind", "local")
	v.SetDefault("backend.local.root", ".")
	v.SetDefault("backend.s3.bucket", "")
	v.SetDefault("backend.s3.prefix", "")
	v.SetDefault("backend.s3.region", "")
	v.SetDefault("backend.s3.endpoint", "")
	v.SetDefault("backend.s3.use_path_style", false)
	v.SetDefault("backend.minio.endpoint", "")
	v.SetDefault("backend.minio.access_key", "")
	v.SetDefault("backend.minio.secret_key", "")
	v.SetDefault("backend.minio.secure", true)
	v.SetDefault("backend.minio.region", "")
	v.SetDefault("backend.minio.bucket", "")
	v.SetDefault("backend.minio.prefix", "")
	v.SetDefault("backend.minio.create_bucket", false)
	v.SetDefault("backend.cache.capacity", 0)
	v.SetDefault("backend.cache.block_size", 64*1024)
	v.SetDefault("backend.limit.bytes_per_sec", 0)
	v.SetDefault("backend.limit.max_concurrent_reads", 0)
	return v
}

// Load reads configuration from path (if not empty) and the environment.
func Load(path string) (*Config, error) {
	return LoadFrom(New(), path)
}

// LoadFrom reads configuration into v, which may already carry bound flags.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Validate configuration and print warnings
	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hkdywg/toolfetch/internal/extract"
	"github.com/hkdywg/toolfetch/internal/toolchain"
	"github.com/hkdywg/toolfetch/internal/utils"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultPath = "toolfetch.yaml"

type Config struct {
	HTTP       HTTPConfig            `mapstructure:"http" yaml:"http"`
	Download   DownloadConfig        `mapstructure:"download" yaml:"download"`
	Extract    ExtractConfig         `mapstructure:"extract" yaml:"extract"`
	S3         S3Config              `mapstructure:"s3" yaml:"s3"`
	Toolchain  ToolchainConfig       `mapstructure:"toolchain" yaml:"toolchain"`
	Toolchains []toolchain.Toolchain `mapstructure:"toolchains" yaml:"toolchains"`
}

type HTTPConfig struct {
	Timeout          time.Duration     `mapstructure:"timeout" yaml:"timeout"`
	KeepAliveTimeout time.Duration     `mapstructure:"keep_alive_timeout" yaml:"keep_alive_timeout"`
	Proxy            string            `mapstructure:"proxy" yaml:"proxy"`
	ProxyUsername    string            `mapstructure:"proxy_username" yaml:"proxy_username"`
	ProxyPassword    string            `mapstructure:"proxy_password" yaml:"proxy_password"`
	UserAgent        string            `mapstructure:"user_agent" yaml:"user_agent"`
	Headers          map[string]string `mapstructure:"headers" yaml:"headers"`
	Token            string            `mapstructure:"token" yaml:"token"`
}

type DownloadConfig struct {
	ChunkSize      int           `mapstructure:"chunk_size" yaml:"chunk_size"`
	ReportInterval time.Duration `mapstructure:"report_interval" yaml:"report_interval"`
}

type ExtractConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
}

type S3Config struct {
	Profile string `mapstructure:"profile" yaml:"profile"`
	Region  string `mapstructure:"region" yaml:"region"`
}

type ToolchainConfig struct {
	Dir         string `mapstructure:"dir" yaml:"dir"`
	EnvFile     string `mapstructure:"env_file" yaml:"env_file"`
	DefaultArch string `mapstructure:"default_arch" yaml:"default_arch"`
}

// flagKeys maps command-line flag names to the config keys they override.
var flagKeys = map[string]string{
	"timeout":         "http.timeout",
	"proxy":           "http.proxy",
	"user-agent":      "http.user_agent",
	"token":           "http.token",
	"chunk-size":      "download.chunk_size",
	"report-interval": "download.report_interval",
	"backend":         "extract.backend",
	"profile":         "s3.profile",
	"region":          "s3.region",
	"dir":             "toolchain.dir",
	"env-file":        "toolchain.env_file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 3*time.Minute)
	v.SetDefault("http.keep_alive_timeout", 90*time.Second)
	v.SetDefault("http.proxy", "")
	v.SetDefault("http.proxy_username", "")
	v.SetDefault("http.proxy_password", "")
	v.SetDefault("http.user_agent", utils.ToolUserAgent)
	v.SetDefault("http.headers", map[string]string{})
	v.SetDefault("http.token", "")
	v.SetDefault("download.chunk_size", utils.DefaultChunkSize)
	v.SetDefault("download.report_interval", utils.DefaultReportInterval)
	v.SetDefault("extract.backend", extract.BackendExec)
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("toolchain.dir", "./gnu_gcc")
	v.SetDefault("toolchain.env_file", "env_config.sh")
	v.SetDefault("toolchain.default_arch", "aarch64")
	v.SetDefault("toolchains", []toolchain.Toolchain{})
}

// Load reads path (or toolfetch.yaml when present), then environment
// variables prefixed TOOLFETCH_, then any changed flags in flags.
// An explicit path that does not exist is an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TOOLFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if flag := flags.Lookup(name); flag != nil && flag.Changed {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.ChunkSize <= 0 {
		return errors.New("download.chunk_size must be positive")
	}
	if c.Download.ReportInterval <= 0 {
		return errors.New("download.report_interval must be positive")
	}
	switch c.Extract.Backend {
	case extract.BackendExec, extract.BackendNative:
	default:
		return fmt.Errorf("extract.backend must be %q or %q, got %q", extract.BackendExec, extract.BackendNative, c.Extract.Backend)
	}
	if c.Toolchain.Dir == "" {
		c.Toolchain.Dir = "./gnu_gcc"
	}
	if c.Toolchain.EnvFile == "" {
		c.Toolchain.EnvFile = "env_config.sh"
	}
	if c.Toolchain.DefaultArch == "" {
		c.Toolchain.DefaultArch = "aarch64"
	}
	return nil
}

// HTTPClientConfig converts the http section into the client settings.
func (c *Config) HTTPClientConfig() utils.HTTPClientConfig {
	headers := make(map[string]string, len(c.HTTP.Headers))
	for k, v := range c.HTTP.Headers {
		headers[k] = v
	}
	return utils.HTTPClientConfig{
		Timeout:       c.HTTP.Timeout,
		KATimeout:     c.HTTP.KeepAliveTimeout,
		ProxyURL:      c.HTTP.Proxy,
		ProxyUsername: c.HTTP.ProxyUsername,
		ProxyPassword: c.HTTP.ProxyPassword,
		UserAgent:     c.HTTP.UserAgent,
		Headers:       headers,
		Token:         c.HTTP.Token,
	}
}

// Selector builds the toolchain table from the built-ins plus the
// configured entries.
func (c *Config) Selector() (*toolchain.Selector, error) {
	return toolchain.NewSelector(c.Toolchains...)
}

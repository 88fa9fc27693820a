package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vango-dev/projgen/internal/errors"
	"go.yaml.in/yaml/v3"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "projgen"

	// ConfigType is the format of the configuration file.
	ConfigType = "yaml"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = ConfigName + "." + ConfigType

	// EnvPrefix is the prefix for environment overrides.
	EnvPrefix = "PROJGEN"

	// DefaultPortMin is the lowest dev-server port handed out.
	DefaultPortMin = 3000

	// DefaultPortMax is the exclusive upper bound of dev-server ports.
	DefaultPortMax = 4000

	// DefaultProjectsDir is where projects are generated, relative to the workspace.
	DefaultProjectsDir = "projects"

	// DefaultTemplate is the template set used when none is configured.
	DefaultTemplate = "vite-react"

	// DefaultRunner is the package runner suggested after generation.
	DefaultRunner = "bun"

	// DefaultServeAddr is the listen address of `projgen serve`.
	DefaultServeAddr = ":8080"
)

// Config represents the complete projgen configuration.
type Config struct {
	// Workspace is the base workspace root. Relative paths below resolve against it.
	Workspace string `mapstructure:"workspace" yaml:"workspace,omitempty"`

	// ProjectsDir is the directory that receives generated projects.
	ProjectsDir string `mapstructure:"projectsDir" yaml:"projectsDir"`

	// SharedDir is the target of the "@/shared" import alias.
	SharedDir string `mapstructure:"sharedDir" yaml:"sharedDir"`

	// PostCSSConfig is the shared PostCSS configuration file.
	PostCSSConfig string `mapstructure:"postcssConfig" yaml:"postcssConfig"`

	// Template is the template set name.
	Template string `mapstructure:"template" yaml:"template"`

	// Runner is the package runner used in the suggested follow-up command.
	Runner string `mapstructure:"runner" yaml:"runner"`

	// Ports is the range the dev-server port is drawn from.
	Ports PortRange `mapstructure:"ports" yaml:"ports"`

	// Log contains logging configuration.
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Serve contains HTTP service configuration.
	Serve ServeConfig `mapstructure:"serve" yaml:"serve"`

	// Publish contains upload configuration.
	Publish PublishConfig `mapstructure:"publish" yaml:"publish"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PortRange is a half-open port interval [Min, Max).
type PortRange struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// ServeConfig contains HTTP service settings.
type ServeConfig struct {
	// Addr is the listen address.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// PublishConfig contains upload settings.
type PublishConfig struct {
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config configures the S3 publisher.
type S3Config struct {
	// Bucket is the destination bucket. Publishing is disabled when empty.
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`

	// Region is the AWS region.
	Region string `mapstructure:"region" yaml:"region"`

	// Endpoint overrides the service endpoint (MinIO, LocalStack).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// AccessKeyID and SecretAccessKey are static credentials. When empty the
	// standard AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY variables are used.
	AccessKeyID     string `mapstructure:"accessKeyID" yaml:"accessKeyID,omitempty"`
	SecretAccessKey string `mapstructure:"secretAccessKey" yaml:"secretAccessKey,omitempty"`

	// UsePathStyle addresses buckets as path segments instead of subdomains.
	UsePathStyle bool `mapstructure:"usePathStyle" yaml:"usePathStyle"`
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Workspace:     ".",
		ProjectsDir:   DefaultProjectsDir,
		SharedDir:     "shared",
		PostCSSConfig: "postcss.config.js",
		Template:      DefaultTemplate,
		Runner:        DefaultRunner,
		Ports: PortRange{
			Min: DefaultPortMin,
			Max: DefaultPortMax,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Serve: ServeConfig{
			Addr: DefaultServeAddr,
		},
		Publish: PublishConfig{
			S3: S3Config{
				Region: "us-east-1",
			},
		},
	}
}

// defaults flattens New() into viper keys so that environment variables
// are honoured for every key, not only the ones present in the file.
func defaults() map[string]any {
	d := New()
	return map[string]any{
		"workspace":                  d.Workspace,
		"projectsDir":                d.ProjectsDir,
		"sharedDir":                  d.SharedDir,
		"postcssConfig":              d.PostCSSConfig,
		"template":                   d.Template,
		"runner":                     d.Runner,
		"ports.min":                  d.Ports.Min,
		"ports.max":                  d.Ports.Max,
		"log.level":                  d.Log.Level,
		"log.format":                 d.Log.Format,
		"serve.addr":                 d.Serve.Addr,
		"publish.s3.bucket":          d.Publish.S3.Bucket,
		"publish.s3.prefix":          d.Publish.S3.Prefix,
		"publish.s3.region":          d.Publish.S3.Region,
		"publish.s3.endpoint":        d.Publish.S3.Endpoint,
		"publish.s3.accessKeyID":     d.Publish.S3.AccessKeyID,
		"publish.s3.secretAccessKey": d.Publish.S3.SecretAccessKey,
		"publish.s3.usePathStyle":    d.Publish.S3.UsePathStyle,
	}
}

// Loader layers defaults, projgen.yaml, environment and flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with defaults and environment binding applied.
func NewLoader() *Loader {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlag makes a command-line flag override the given key when it is set.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return errors.New("E122").WithDetail("no flag to bind for " + key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the configuration. When path is empty, projgen.yaml is looked
// up in the workspace directory and may be absent. An explicit path must exist.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if stderrors.Is(err, os.ErrNotExist) {
				return nil, errors.New("E120").
					WithPath(path).
					WithDetail("config file does not exist").
					Wrap(err)
			}
			return nil, errors.New("E120").WithPath(path).Wrap(err)
		}
	} else {
		l.v.SetConfigName(ConfigName)
		l.v.SetConfigType(ConfigType)
		l.v.AddConfigPath(l.v.GetString("workspace"))
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.New("E120").
					WithPath(filepath.Join(l.v.GetString("workspace"), ConfigFileName)).
					Wrap(err)
			}
		}
	}

	cfg := New()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E120").
			WithPath(l.v.ConfigFileUsed()).
			WithDetail("Failed to decode configuration").
			Wrap(err)
	}
	cfg.configPath = l.v.ConfigFileUsed()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for fields emptied by the file.
func (c *Config) applyDefaults() {
	d := New()
	if c.Workspace == "" {
		c.Workspace = d.Workspace
	}
	if c.Template == "" {
		c.Template = d.Template
	}
	if c.Runner == "" {
		c.Runner = d.Runner
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Ports.Min <= 0 || c.Ports.Max > 65536 || c.Ports.Min >= c.Ports.Max {
		return errors.New("E121").
			WithDetail("ports must satisfy 0 < min < max <= 65536, got [" +
				strconv.Itoa(c.Ports.Min) + ", " + strconv.Itoa(c.Ports.Max) + ")")
	}
	if strings.TrimSpace(c.ProjectsDir) == "" {
		return errors.New("E122").WithDetail("projectsDir must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E122").
			WithDetail("log.level must be one of debug, info, warn, error; got " + strconv.Quote(c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E122").
			WithDetail("log.format must be text or json; got " + strconv.Quote(c.Log.Format))
	}
	return nil
}

// SlogLevel returns the configured level as a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolve joins a possibly-relative path onto the absolute workspace root.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.WorkspacePath(), path)
}

// WorkspacePath returns the absolute workspace root.
func (c *Config) WorkspacePath() string {
	abs, err := filepath.Abs(c.Workspace)
	if err != nil {
		return filepath.Clean(c.Workspace)
	}
	return abs
}

// ProjectsPath returns the directory that receives generated projects.
func (c *Config) ProjectsPath() string {
	return c.resolve(c.ProjectsDir)
}

// ProjectPath returns the directory of the named project.
func (c *Config) ProjectPath(name string) string {
	return filepath.Join(c.ProjectsPath(), name)
}

// SharedPath returns the target of the "@/shared" alias.
func (c *Config) SharedPath() string {
	return c.resolve(c.SharedDir)
}

// PostCSSPath returns the shared PostCSS configuration file.
func (c *Config) PostCSSPath() string {
	return c.resolve(c.PostCSSConfig)
}

// redacted replaces secrets in YAML output.
const redacted = "********"

// YAML renders the configuration in projgen.yaml form. Secrets are masked.
func (c *Config) YAML() ([]byte, error) {
	out := *c
	if out.Publish.S3.SecretAccessKey != "" {
		out.Publish.S3.SecretAccessKey = redacted
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return nil, errors.New("E122").WithDetail("cannot encode configuration").Wrap(err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.New("E122").WithDetail("cannot encode configuration").Wrap(err)
	}
	return buf.Bytes(), nil
}

// WriteDefault writes a projgen.yaml with default values into dir and
// returns its path. An existing file is only replaced when force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, ConfigFileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("E123").WithPath(path)
		}
	}

	cfg := New()
	cfg.Workspace = ""
	data, err := cfg.YAML()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.New("E103").WithPath(path).Wrap(err)
	}
	return path, nil
}

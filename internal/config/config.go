package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/pluginkit/internal/paths"
	"github.com/thoreinstein/pluginkit/pkg/fileutil"
	"github.com/thoreinstein/pluginkit/pkg/frontmatter"
)

// EnvPrefix is the prefix of environment variable overrides
// (PLUGINKIT_INSTALL_DIR, PLUGINKIT_MARKETPLACE_DIR, ...).
const EnvPrefix = "PLUGINKIT"

// Config represents the top-level configuration structure.
type Config struct {
	Version         int               `mapstructure:"version" yaml:"version"`
	MarketplaceDir  string            `mapstructure:"marketplace_dir" yaml:"marketplace_dir"`
	InstallDir      string            `mapstructure:"install_dir" yaml:"install_dir"`
	MaxResourceSize int64             `mapstructure:"max_resource_size" yaml:"max_resource_size"`
	Frontmatter     FrontmatterConfig `mapstructure:"frontmatter" yaml:"frontmatter"`
}

// FrontmatterConfig overrides the field and model sets the normalizer uses
// to find field boundaries.
type FrontmatterConfig struct {
	KnownFields []string `mapstructure:"known_fields" yaml:"known_fields"`
	KnownModels []string `mapstructure:"known_models" yaml:"known_models"`
}

// Init resets Viper and registers the config file locations, environment
// binding and defaults. Call this once at application startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("marketplace_dir", paths.DefaultMarketplaceDir())
	viper.SetDefault("install_dir", paths.DefaultInstallDir())
	viper.SetDefault("max_resource_size", fileutil.MaxFileSize)
	viper.SetDefault("frontmatter.known_fields", frontmatter.DefaultKnownFields)
	viper.SetDefault("frontmatter.known_models", frontmatter.DefaultKnownModels)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found. The result is always validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file uses defaults.
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}

	return &cfg, nil
}

// ClassifierOptions returns the frontmatter options for the configured field
// and model sets.
func (c *Config) ClassifierOptions() []frontmatter.ClassifierOption {
	var opts []frontmatter.ClassifierOption
	if len(c.Frontmatter.KnownFields) > 0 {
		opts = append(opts, frontmatter.WithKnownFields(c.Frontmatter.KnownFields...))
	}
	if len(c.Frontmatter.KnownModels) > 0 {
		opts = append(opts, frontmatter.WithKnownModels(c.Frontmatter.KnownModels...))
	}
	return opts
}

// Parser returns a frontmatter parser using the configured classifier.
func (c *Config) Parser() *frontmatter.Parser {
	return frontmatter.New(frontmatter.WithClassifier(frontmatter.NewClassifier(c.ClassifierOptions()...)))
}

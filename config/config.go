// Package config holds the settings for the firedoc trigger and CLI.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"cloud.google.com/go/compute/metadata"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Neumenon/firedoc/firedoc"
	"github.com/Neumenon/firedoc/internal/log"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "FIREDOC"

// ErrNoProjectID is returned by ResolveProjectID when no source names a
// project.
var ErrNoProjectID = errors.New("config: no project id configured")

// Config is the explicit configuration passed to the trigger and the store.
type Config struct {
	// ProjectID names the database project. Empty means discover it.
	ProjectID string `mapstructure:"project_id"`
	// DatabaseID names the database. Empty means "(default)".
	DatabaseID string `mapstructure:"database_id"`

	// CollectionIndex and DocumentIndex are the positions of the collection
	// and record ids in the slash-separated resource name.
	CollectionIndex int `mapstructure:"collection_index"`
	DocumentIndex   int `mapstructure:"document_index"`

	// StatusField is the field set to true on the record.
	StatusField string `mapstructure:"status_field"`
	// DryRun forces dry runs regardless of the event.
	DryRun bool `mapstructure:"dry_run"`

	Strict       bool   `mapstructure:"strict"`
	MaxDepth     int    `mapstructure:"max_depth"`
	NumberPolicy string `mapstructure:"number_policy"`

	LogLevel string `mapstructure:"log_level"`
	// MetricsFile, when set, receives the counters in the prometheus text
	// format after a CLI run.
	MetricsFile string `mapstructure:"metrics_file"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		CollectionIndex: 5,
		DocumentIndex:   6,
		StatusField:     "status",
		MaxDepth:        firedoc.DefaultMaxDepth,
		NumberPolicy:    firedoc.NumbersAsInteger.String(),
		LogLevel:        "info",
	}
}

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"project":          "project_id",
	"database":         "database_id",
	"collection-index": "collection_index",
	"document-index":   "document_index",
	"status-field":     "status_field",
	"dry-run":          "dry_run",
	"strict":           "strict",
	"max-depth":        "max_depth",
	"number-policy":    "number_policy",
	"log-level":        "log_level",
	"metrics-file":     "metrics_file",
}

// Load reads the configuration from defaults, the optional YAML or JSON
// configFile, FIREDOC_* environment variables and any changed flags in
// flags, in increasing order of precedence.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v, Default()); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %q: %w", configFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("config: failed to bind flag %q: %w", name, err)
			}
		}
	}

	cfg := new(Config)
	var md mapstructure.Metadata
	if err := v.Unmarshal(cfg, func(c *mapstructure.DecoderConfig) { c.Metadata = &md }); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if len(md.Unused) > 0 {
		unused := slices.Sorted(slices.Values(md.Unused))
		for _, key := range unused {
			log.Error(context.Background()).Str("config-file", configFile).Str("key", key).Msg("unknown configuration option")
		}
		return nil, fmt.Errorf("config: unknown options: %s", strings.Join(unused, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every mapstructure key with its default and its
// environment variable so that Unmarshal sees keys set only in the
// environment.
func setDefaults(v *viper.Viper, def *Config) error {
	rv := reflect.ValueOf(def).Elem()
	rt := rv.Type()
	for i := range rt.NumField() {
		key, ok := rt.Field(i).Tag.Lookup("mapstructure")
		if !ok || key == "-" {
			continue
		}
		v.SetDefault(key, rv.Field(i).Interface())
		env := EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("config: failed to bind %q to env var %q: %w", key, env, err)
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.CollectionIndex < 0 || c.DocumentIndex < 0 {
		return fmt.Errorf("config: path positions must not be negative (collection %d, document %d)",
			c.CollectionIndex, c.DocumentIndex)
	}
	if c.CollectionIndex == c.DocumentIndex {
		return fmt.Errorf("config: collection and document positions are both %d", c.CollectionIndex)
	}
	if c.StatusField == "" {
		return errors.New("config: status_field is required")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("config: max_depth %d is negative", c.MaxDepth)
	}
	if _, err := firedoc.ParseNumberPolicy(c.NumberPolicy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ConvertOptions returns the decoder and encoder options the configuration
// selects.
func (c *Config) ConvertOptions() firedoc.Options {
	// Validate has already rejected unknown policies.
	policy, _ := firedoc.ParseNumberPolicy(c.NumberPolicy)
	return firedoc.Options{
		MaxDepth:     c.MaxDepth,
		Strict:       c.Strict,
		NumberPolicy: policy,
	}
}

var (
	onGCE             = metadata.OnGCE
	metadataProjectID = metadata.ProjectIDWithContext
)

// ResolveProjectID returns the configured project id, then the one named by
// GOOGLE_CLOUD_PROJECT or GCLOUD_PROJECT, then the one reported by the
// compute metadata server.
func (c *Config) ResolveProjectID(ctx context.Context) (string, error) {
	if c.ProjectID != "" {
		return c.ProjectID, nil
	}
	for _, env := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"} {
		if id := os.Getenv(env); id != "" {
			return id, nil
		}
	}
	if !onGCE() {
		return "", ErrNoProjectID
	}
	id, err := metadataProjectID(ctx)
	if err != nil {
		return "", fmt.Errorf("config: metadata server: %w", err)
	}
	if id == "" {
		return "", ErrNoProjectID
	}
	log.Debug(ctx).Str("project", id).Msg("project id from metadata server")
	return id, nil
}

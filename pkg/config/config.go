package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Config holds application-wide configuration
type Config struct {
	Title       string                      `mapstructure:"title"`
	Description string                      `mapstructure:"description"`
	URLBase     string                      `mapstructure:"url_base"`
	Collections map[string]CollectionConfig `mapstructure:"collections"`
	Server      ServerConfig                `mapstructure:"server"`
	Database    DatabaseConfig              `mapstructure:"database"`
	Metrics     MetricsConfig               `mapstructure:"metrics"`
	Limits      LimitsConfig                `mapstructure:"limits"`
}

// CollectionConfig maps a collection onto its backing table. Table and column
// names are trusted identifiers and are written into SQL verbatim.
type CollectionConfig struct {
	Table          string   `mapstructure:"table"`
	IDColumn       string   `mapstructure:"id_column"`
	GeometryColumn string   `mapstructure:"geometry_column"`
	Properties     []string `mapstructure:"properties"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConns       int32  `mapstructure:"max_conns"`
	ConnectRetries uint64 `mapstructure:"connect_retries"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LimitsConfig struct {
	Default uint64 `mapstructure:"default"`
}

var (
	ErrNoURLBase     = errors.New("url_base is required")
	ErrNoCollections = errors.New("at least one collection must be configured")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":3000")
	v.SetDefault("database.max_conns", 5)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("metrics.addr", ":9100")
	v.SetDefault("limits.default", 10)
}

// Load reads config from file or environment.
//
// DATABASE_URL and PORT are honoured for compatibility with container platforms;
// every other key can be overridden with an OGCAPI_ prefixed variable, e.g. OGCAPI_URL_BASE.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ogcapi"))
		}
	}

	v.SetEnvPrefix("OGCAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "OGCAPI_DATABASE_URL", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		trimSliceHook(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if used := v.ConfigFileUsed(); used != "" {
		if err := restoreCollectionIDs(used, &cfg); err != nil {
			return nil, err
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.ListenAddr = ":" + port
	}

	return &cfg, nil
}

// restoreCollectionIDs re-keys cfg.Collections by the ids as written in the
// config file. viper folds map keys to lower case, collection ids are case
// sensitive.
func restoreCollectionIDs(path string, cfg *Config) error {
	ids, err := collectionIDs(path)
	if err != nil {
		return fmt.Errorf("error reading collections from %s: %w", path, err)
	}

	folded := make(map[string]string, len(ids))
	for _, id := range ids {
		key := strings.ToLower(id)
		if prev, ok := folded[key]; ok {
			return fmt.Errorf("collections %q and %q differ only in case", prev, id)
		}
		folded[key] = id
	}

	restored := make(map[string]CollectionConfig, len(cfg.Collections))
	for key, col := range cfg.Collections {
		if id, ok := folded[key]; ok {
			key = id
		}
		restored[key] = col
	}
	cfg.Collections = restored
	return nil
}

// collectionIDs returns the keys of the collections table of the config file,
// decoded by file extension.
func collectionIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Collections map[string]any `toml:"collections" yaml:"collections" json:"collections"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", "":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(raw.Collections))
	for id := range raw.Collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// trimSliceHook trims whitespace around elements produced from comma-separated strings.
func trimSliceHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		s, ok := data.([]string)
		if !ok {
			return data, nil
		}
		out := make([]string, 0, len(s))
		for _, e := range s {
			if e = strings.TrimSpace(e); e != "" {
				out = append(out, e)
			}
		}
		return out, nil
	}
}

// Validate reports the first structural problem in the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URLBase) == "" {
		return ErrNoURLBase
	}
	if len(c.Collections) == 0 {
		return ErrNoCollections
	}
	for _, id := range c.CollectionIDs() {
		if err := c.Collections[id].validate(); err != nil {
			return fmt.Errorf("collection %q: %w", id, err)
		}
	}
	if c.Database.MaxConns < 0 {
		return fmt.Errorf("database.max_conns must not be negative")
	}
	return nil
}

func (c CollectionConfig) validate() error {
	switch {
	case c.Table == "":
		return errors.New("table is required")
	case c.IDColumn == "":
		return errors.New("id_column is required")
	case c.GeometryColumn == "":
		return errors.New("geometry_column is required")
	}
	return nil
}

// Collection looks up a collection by id.
func (c *Config) Collection(id string) (CollectionConfig, bool) {
	col, ok := c.Collections[id]
	return col, ok
}

// CollectionIDs returns the configured collection ids in sorted order.
func (c *Config) CollectionIDs() []string {
	ids := make([]string, 0, len(c.Collections))
	for id := range c.Collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BaseURL returns url_base without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimSuffix(c.URLBase, "/")
}

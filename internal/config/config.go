// Package config loads archboard settings from a TOML file, a .env file
// and ARCHBOARD_* environment variables, in increasing precedence.
// Command-line flags are applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/archboard/pkg/persist"
	"github.com/matzehuels/archboard/pkg/store"
)

const (
	appName = "archboard"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ARCHBOARD_"

	DefaultAddr  = "127.0.0.1:8080"
	DefaultScale = 2.0
)

// Rasterizer names accepted by [ExportConfig].
const (
	RasterizerCanvas   = "canvas"
	RasterizerGraphviz = "graphviz"
	RasterizerNone     = "none"
)

var rasterizers = []string{RasterizerCanvas, RasterizerGraphviz, RasterizerNone}

type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	Namespace       string `toml:"namespace"`
	Key             string `toml:"key"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type ExportConfig struct {
	Rasterizer string  `toml:"rasterizer"`
	Scale      float64 `toml:"scale"`
}

type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Export ExportConfig `toml:"export"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: store.BackendFile,
			Key:     persist.DefaultKey,
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Export: ExportConfig{
			Rasterizer: RasterizerCanvas,
			Scale:      DefaultScale,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/archboard/config.toml, falling back
// to ~/.config/archboard/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. A missing file is
// only an error when required is set. Unknown keys are rejected.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadEnvFile loads variables from a .env file into the process
// environment without overriding ones already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// envVars maps ARCHBOARD_* names to config fields.
func (c *Config) envVars() map[string]func(string) error {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	return map[string]func(string) error{
		"STORE_BACKEND":          str(&c.Store.Backend),
		"STORE_DIR":              str(&c.Store.Dir),
		"STORE_NAMESPACE":        str(&c.Store.Namespace),
		"STORE_KEY":              str(&c.Store.Key),
		"STORE_REDIS_ADDR":       str(&c.Store.RedisAddr),
		"STORE_REDIS_PASSWORD":   str(&c.Store.RedisPassword),
		"STORE_MONGO_URI":        str(&c.Store.MongoURI),
		"STORE_MONGO_DATABASE":   str(&c.Store.MongoDatabase),
		"STORE_MONGO_COLLECTION": str(&c.Store.MongoCollection),
		"SERVER_ADDR":            str(&c.Server.Addr),
		"EXPORT_RASTERIZER":      str(&c.Export.Rasterizer),
		"STORE_REDIS_DB": func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			c.Store.RedisDB = n
			return nil
		},
		"EXPORT_SCALE": func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			c.Export.Scale = f
			return nil
		},
	}
}

// ApplyEnv overrides fields from ARCHBOARD_* variables found by lookup,
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	vars := c.envVars()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := vars[name](v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
	}
	return nil
}

// Validate checks enumerated fields and ranges.
func (c *Config) Validate() error {
	if c.Store.Backend != "" && !slices.Contains(store.Backends, c.Store.Backend) {
		return fmt.Errorf("store.backend %q: want one of %s", c.Store.Backend, strings.Join(store.Backends, ", "))
	}
	if !slices.Contains(rasterizers, c.Export.Rasterizer) {
		return fmt.Errorf("export.rasterizer %q: want one of %s", c.Export.Rasterizer, strings.Join(rasterizers, ", "))
	}
	if c.Export.Scale <= 0 {
		return fmt.Errorf("export.scale must be positive, got %v", c.Export.Scale)
	}
	if c.Store.RedisDB < 0 {
		return fmt.Errorf("store.redis_db must not be negative, got %d", c.Store.RedisDB)
	}
	return nil
}

// StoreOptions converts the [store] section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:         c.Store.Backend,
		Namespace:       c.Store.Namespace,
		Dir:             c.Store.Dir,
		RedisAddr:       c.Store.RedisAddr,
		RedisPassword:   c.Store.RedisPassword,
		RedisDB:         c.Store.RedisDB,
		MongoURI:        c.Store.MongoURI,
		MongoDatabase:   c.Store.MongoDatabase,
		MongoCollection: c.Store.MongoCollection,
	}
}

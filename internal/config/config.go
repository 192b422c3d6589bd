// Package config resolves wtmobile settings from defaults, an optional YAML
// file and the environment, then checks the result against a CUE schema.
//
// Precedence, lowest first: Defaults, file, environment. Command-line flags
// are applied on top by the cli package, which then validates the result.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// DefaultDatabase is the SQLite file used when nothing else is configured.
const DefaultDatabase = "wtmobile.db"

// DefaultAddr is where the web form listens by default.
const DefaultAddr = "127.0.0.1:8080"

// Config is the resolved configuration.
type Config struct {
	Database string `yaml:"database" json:"database" env:"WTMOBILE_DB"`
	Format   string `yaml:"format" json:"format" env:"WTMOBILE_FORMAT"`
	Addr     string `yaml:"addr" json:"addr" env:"WTMOBILE_ADDR"`
	Verbose  bool   `yaml:"verbose" json:"verbose" env:"WTMOBILE_VERBOSE"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Database: DefaultDatabase,
		Format:   "text",
		Addr:     DefaultAddr,
	}
}

// Load merges defaults, the file and the environment. An empty path skips
// the file layer; a path that does not exist is an error.
//
// The result is not validated: callers layer flags on top and then call
// Validate once.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto cfg.
// Unknown keys are rejected so typos do not pass silently.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := ctx.Encode(cfg)
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

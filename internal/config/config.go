// Package config loads datastore configuration from YAML or CUE files.
//
// Both formats are unified with an embedded CUE schema that supplies
// defaults and rejects unknown keys or out-of-range values:
//
//	database:
//	  driver: postgres          # sqlite | postgres | mysql
//	  dsn: postgres://app@db/events
//	  role: app_writer          # optional, applied with SET ROLE
//	log:
//	  level: debug              # debug | info | warn | error
//	  format: json              # text | json
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the complete datastore configuration.
type Config struct {
	Database Database `json:"database" yaml:"database"`
	Log      Log      `json:"log" yaml:"log"`
}

// Database selects the backend and session role.
type Database struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
	Role   string `json:"role" yaml:"role"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database: Database{Driver: "sqlite", DSN: "datastore.db"},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load reads a .yaml, .yml or .cue file and validates it against the schema.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	ctx := cuecontext.New()
	var v cue.Value
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		doc, err := decodeYAML(data)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		v = ctx.Encode(doc)
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(path))
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .cue)", ext)
	}
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg, err := validate(ctx, v)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// validate unifies v with the schema and decodes the concrete result.
func validate(ctx *cue.Context, v cue.Value) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Logger builds a logger writing to w at the configured level and format.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Log.Format)
	}
}

// ErrUnknownLevel is returned by ParseLevel for unrecognized names.
var ErrUnknownLevel = errors.New("unknown log level")

// ParseLevel maps a level name to its slog.Level. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownLevel, name)
	}
}

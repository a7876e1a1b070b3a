// Package config loads funcsql configuration: join relations, command
// renames, compiler limits and the database target used by "run".
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/funcsql/pkg/adapter"
)

// Default configuration values.
const (
	DefaultMacrosDir  = "macros"
	DefaultEnv        = "dev"
	DefaultOutput     = "table"
	DefaultTargetType = "sqlite"
)

// Config holds all configuration options.
type Config struct {
	Relations       []RelationConfig          `koanf:"relations"`
	DefaultRelation *DefaultRelation          `koanf:"default_relation"`
	Renames         map[string]string         `koanf:"renames"`
	MaxDepth        int                       `koanf:"max_depth"`
	MacrosDir       string                    `koanf:"macros_dir"`
	InferRelations  bool                      `koanf:"infer_relations"`
	Environment     string                    `koanf:"environment"`
	Output          string                    `koanf:"output"`
	Pretty          bool                      `koanf:"pretty"`
	Verbose         bool                      `koanf:"verbose"`
	Target          *TargetConfig             `koanf:"target"`
	Environments    map[string]map[string]any `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// RelationConfig declares that Table1.Column1 joins Table2.Column2.
type RelationConfig struct {
	Table1  string `koanf:"table1"`
	Column1 string `koanf:"column1"`
	Table2  string `koanf:"table2"`
	Column2 string `koanf:"column2"`
}

// DefaultRelation is the join pair used between tables without a declared
// relation.
type DefaultRelation struct {
	Column1 string `koanf:"column1"`
	Column2 string `koanf:"column2"`
}

// TargetConfig holds the database target compiled SQL runs against.
type TargetConfig struct {
	Type string `koanf:"type"` // sqlite, duckdb, postgres

	// File-based databases
	Path string `koanf:"path"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	Options map[string]string `koanf:"options"`
	Params  map[string]any    `koanf:"params"`
}

// ApplyDefaults fills type-specific defaults.
func (t *TargetConfig) ApplyDefaults() {
	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	t.Type = strings.ToLower(t.Type)
	if t.Type == "postgres" && t.Port == 0 {
		t.Port = 5432
	}
}

// Validate checks the target type against the adapter registry.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	return adapter.CheckType(t.Type)
}

// AdapterConfig converts the target into the adapter connection config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Options:  t.Options,
		Params:   t.Params,
	}
}

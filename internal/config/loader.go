package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "funcsql.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "funcsql.yml"

// EnvPrefix prefixes environment variables. A double underscore separates
// nested keys: FUNCSQL_TARGET__TYPE sets target.type.
const EnvPrefix = "FUNCSQL_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps flag names whose config key is not the snake_case name.
var flagKeys = map[string]string{
	"env":      "environment",
	"database": "target.path",
	"target":   "target.type",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an explicit config file. When empty, funcsql.yaml is searched
	// upward from Dir.
	File string
	// Dir is the search start, the working directory when empty.
	Dir string
	// Environment overrides the environment key.
	Environment string
	// Flags are applied last; only flags that were set count.
	Flags *pflag.FlagSet
}

// Load reads configuration. Later layers win:
//
//	defaults < config file < environments.<name> < FUNCSQL_* vars < flags
//
// Relative paths are resolved against the directory of the config file.
func Load(opts LoadOptions) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = cwd
	}

	cfgFile, root := opts.File, dir
	if cfgFile != "" {
		abs, err := filepath.Abs(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("invalid config path %s: %w", cfgFile, err)
		}
		cfgFile, root = abs, filepath.Dir(abs)
	} else if found := FindProjectRoot(dir); found != "" {
		cfgFile, root = configIn(found), found
	}

	base, err := fileLayer(cfgFile)
	if err != nil {
		return nil, err
	}
	over, err := overrideLayer(opts.Flags)
	if err != nil {
		return nil, err
	}

	name := opts.Environment
	for _, k := range []*koanf.Koanf{over, base} {
		if name == "" {
			name = k.String("environment")
		}
	}
	if name == "" {
		name = DefaultEnv
	}

	k := koanf.New(".")
	if err := k.Merge(base); err != nil {
		return nil, fmt.Errorf("failed to merge config file: %w", err)
	}
	switch section := "environments." + name; {
	case base.Exists(section):
		if err := k.Merge(base.Cut(section)); err != nil {
			return nil, fmt.Errorf("failed to merge environment %q: %w", name, err)
		}
	case name != DefaultEnv && base.Exists("environments"):
		return nil, fmt.Errorf("environment %q is not defined in config", name)
	}
	if err := k.Merge(over); err != nil {
		return nil, fmt.Errorf("failed to merge overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile
	cfg.ProjectRoot = root
	cfg.Environment = name

	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}
	cfg.Target.ApplyDefaults()
	expandTargetEnvVars(cfg.Target)

	cfg.MacrosDir = under(root, cfg.MacrosDir)
	if cfg.Target.Path != ":memory:" {
		cfg.Target.Path = under(root, cfg.Target.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fileLayer holds the defaults overlaid with the config file, if any.
func fileLayer(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{
		"macros_dir": DefaultMacrosDir,
		"output":     DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path == "" {
		return k, nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return k, nil
}

// overrideLayer holds FUNCSQL_* variables overlaid with the flags that were
// set.
func overrideLayer(flags *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}
	if flags == nil {
		return k, nil
	}
	err := k.Load(posflag.ProviderWithFlag(flags, ".", nil, func(f *pflag.Flag) (string, any) {
		if !f.Changed {
			return "", nil
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		return key, posflag.FlagVal(flags, f)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}
	return k, nil
}

// envKey turns FUNCSQL_TARGET__TYPE into target.type.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// configIn returns the config file in dir, or "".
func configIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir to the first directory holding a
// config file. Returns empty string if not found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// under resolves a relative path against dir.
func under(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// expandEnvVars expands ${VAR} patterns. Unset variables are left as is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

func expandTargetEnvVars(t *TargetConfig) {
	t.Path = expandEnvVars(t.Path)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.User = expandEnvVars(t.User)
	t.Password = expandEnvVars(t.Password)
}

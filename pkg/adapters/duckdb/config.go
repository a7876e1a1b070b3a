package duckdb

import (
	"fmt"
	"regexp"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific target configuration, decoded from
// adapter.Config.Params.
type Params struct {
	// Extensions to install and load, e.g. "json".
	Extensions []string `mapstructure:"extensions"`

	// Settings applied with SET at connect time, e.g. threads or memory_limit.
	Settings map[string]string `mapstructure:"settings"`
}

var settingName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseParams decodes raw target params.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, fmt.Errorf("invalid duckdb params: %w", err)
	}

	for name := range p.Settings {
		if !settingName.MatchString(name) {
			return p, fmt.Errorf("invalid duckdb setting name %q", name)
		}
	}
	for _, ext := range p.Extensions {
		if !settingName.MatchString(ext) {
			return p, fmt.Errorf("invalid duckdb extension name %q", ext)
		}
	}
	return p, nil
}

package config

import (
	"errors"
	"fmt"
)

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	switch c.Output {
	case "table", "json", "csv", "md":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q (table, json, csv, md)", c.Output))
	}
	for i, r := range c.Relations {
		if r.Table1 == "" || r.Column1 == "" || r.Table2 == "" || r.Column2 == "" {
			errs = append(errs, fmt.Errorf("relations[%d]: table1, column1, table2 and column2 are required", i))
		}
	}
	if d := c.DefaultRelation; d != nil && d.Column1 != d.Column2 {
		errs = append(errs, fmt.Errorf("default_relation: columns must be equal, got %q and %q", d.Column1, d.Column2))
	}
	for from, to := range c.Renames {
		if from == "" || to == "" {
			errs = append(errs, fmt.Errorf("renames: empty command name in %q -> %q", from, to))
		}
	}
	if c.Target != nil {
		if err := c.Target.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("invalid target configuration: %w", err))
		}
	}
	return errors.Join(errs...)
}

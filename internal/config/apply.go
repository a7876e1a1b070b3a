package config

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/funcsql/pkg/compiler"
)

// CompilerOptions returns the compiler options carried by the config.
func (c *Config) CompilerOptions(logger *slog.Logger) []compiler.Option {
	opts := []compiler.Option{compiler.WithLogger(logger)}
	if c.MaxDepth > 0 {
		opts = append(opts, compiler.WithMaxDepth(c.MaxDepth))
	}
	return opts
}

// ApplyTo renames commands and declares the configured relations on comp.
// Renames are applied in order of their old names.
func (c *Config) ApplyTo(comp *compiler.Compiler) error {
	names := make([]string, 0, len(c.Renames))
	for from := range c.Renames {
		names = append(names, from)
	}
	sort.Strings(names)
	for _, from := range names {
		if err := comp.Rename(from, c.Renames[from]); err != nil {
			return fmt.Errorf("rename %s: %w", from, err)
		}
	}

	for _, r := range c.Relations {
		if err := comp.AddRelation(r.Table1, r.Column1, r.Table2, r.Column2); err != nil {
			return fmt.Errorf("relation %s.%s = %s.%s: %w", r.Table1, r.Column1, r.Table2, r.Column2, err)
		}
	}
	if d := c.DefaultRelation; d != nil {
		if err := comp.AddDefaultRelation(d.Column1, d.Column2); err != nil {
			return fmt.Errorf("default relation: %w", err)
		}
	}
	return nil
}

// NewCompiler creates a compiler configured by c.
func (c *Config) NewCompiler(logger *slog.Logger) (*compiler.Compiler, error) {
	comp := compiler.New(c.CompilerOptions(logger)...)
	if err := c.ApplyTo(comp); err != nil {
		return nil, err
	}
	return comp, nil
}

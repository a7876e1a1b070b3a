package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrNoType is returned when a target names no adapter type.
var ErrNoType = errors.New("adapter type not specified")

// Factory creates an unconnected adapter.
type Factory func(*slog.Logger) Adapter

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// Register makes an adapter available under a target type. Adapters call
// it from init; registering a type twice panics.
func Register(typ string, f Factory) {
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.factories[typ]; dup {
		panic("adapter: Register called twice for " + typ)
	}
	registry.factories[typ] = f
}

// Types returns the registered target types in name order.
func Types() []string {
	registry.RLock()
	defer registry.RUnlock()
	return slices.Sorted(maps.Keys(registry.factories))
}

// CheckType reports an error unless typ names a registered adapter.
// Type names are case-insensitive.
func CheckType(typ string) error {
	_, err := factory(typ)
	return err
}

func factory(typ string) (Factory, error) {
	if typ == "" {
		return nil, ErrNoType
	}
	registry.RLock()
	f, ok := registry.factories[strings.ToLower(typ)]
	registry.RUnlock()
	if !ok {
		return nil, &UnknownTypeError{Type: typ, Available: Types()}
	}
	return f, nil
}

// New creates an unconnected adapter for cfg.Type.
func New(cfg Config, logger *slog.Logger) (Adapter, error) {
	f, err := factory(cfg.Type)
	if err != nil {
		return nil, err
	}
	return f(logger), nil
}

// Open creates the adapter for cfg.Type and connects it.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Adapter, error) {
	a, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Type, err)
	}
	return a, nil
}

// UnknownTypeError is returned for a target type no adapter registered.
type UnknownTypeError struct {
	Type      string
	Available []string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown target type %q (available: %s); check target.type in funcsql.yaml",
		e.Type, strings.Join(e.Available, ", "))
}

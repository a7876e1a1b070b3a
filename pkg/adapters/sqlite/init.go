package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/funcsql/pkg/adapter"
)

// TypeName is the target type of this adapter.
const TypeName = "sqlite"

func init() {
	adapter.Register(TypeName, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

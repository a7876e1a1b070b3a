package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
)

// Strings converts a macro result into clauses: None is no clause, a
// string is one clause and a list or tuple of strings is one clause per
// element.
func Strings(v starlark.Value) ([]string, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return []string{string(val)}, nil
	case starlark.Indexable:
		out := make([]string, 0, val.Len())
		for i := 0; i < val.Len(); i++ {
			s, ok := val.Index(i).(starlark.String)
			if !ok {
				return nil, fmt.Errorf("element %d: want string, got %s", i, val.Index(i).Type())
			}
			out = append(out, string(s))
		}
		return out, nil
	}
	return nil, fmt.Errorf("want string, list of strings or None, got %s", v.Type())
}

// Tuple converts strings into positional call arguments.
func Tuple(values ...string) starlark.Tuple {
	out := make(starlark.Tuple, len(values))
	for i, v := range values {
		out[i] = starlark.String(v)
	}
	return out
}

// Package macro loads Starlark macros and installs them as filter
// commands. A function f in dates.star becomes the command dates.f; its
// first argument is the resolved column, the rest are the literal values,
// and it returns the WHERE clause text.
package macro

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Extension is the file extension of macro files.
const Extension = ".star"

var namespacePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FileError reports a macro file that could not be loaded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("macros/%s: %v", filepath.Base(e.Path), e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// function is one exported macro function.
type function struct {
	name string
	fn   starlark.Callable
	sig  *Signature
}

// module holds the functions of one macro file.
type module struct {
	namespace string
	path      string
	functions []function
}

// loadDir loads the macro files directly under dir in name order. A
// missing directory holds no macros.
func loadDir(dir string, predeclared starlark.StringDict) ([]*module, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read macros directory: %w", err)
	}

	var modules []*module
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		m, err := loadModule(filepath.Join(dir, e.Name()), predeclared)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// loadModule parses and runs one macro file.
func loadModule(path string, predeclared starlark.StringDict) (*module, error) {
	namespace := strings.TrimSuffix(filepath.Base(path), Extension)
	if !namespacePattern.MatchString(namespace) {
		return nil, &FileError{Path: path, Err: fmt.Errorf("%q is not a valid namespace", namespace)}
	}

	src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the macros directory
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	f, prog, err := starlark.SourceProgramOptions(&syntax.FileOptions{}, path, src, predeclared.Has)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	thread := &starlark.Thread{Name: "load:" + namespace, Print: func(*starlark.Thread, string) {}}
	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		return nil, &FileError{Path: path, Err: fmt.Errorf("execution failed: %w", err)}
	}
	// Macros run on many threads at once; module state must stay read-only.
	globals.Freeze()

	sigs := signatures(f, src)
	m := &module{namespace: namespace, path: path}
	for name, sig := range sigs {
		fn, ok := globals[name].(starlark.Callable)
		if !ok {
			continue
		}
		if len(sig.Params) == 0 || sig.Params[0].Name == "" || sig.Params[0].Keywords {
			return nil, &FileError{Path: path, Err: fmt.Errorf("%s must take the column as first parameter", name)}
		}
		m.functions = append(m.functions, function{name: name, fn: fn, sig: sig})
	}
	sort.Slice(m.functions, func(i, j int) bool { return m.functions[i].name < m.functions[j].name })
	return m, nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/funcsql/internal/loader"
	"github.com/leapstack-labs/funcsql/internal/macro"
	"github.com/spf13/cobra"
)

const debounceDelay = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [file|dir...]",
		Short: "Recompile query files when they change",
		Long: `Compile the query files under the given paths (the current directory by
default) and recompile each one when it is saved. A change to a macro file
reloads the macros and recompiles everything.`,
		Example: `  funcsql watch queries/
  funcsql watch --pretty report.fsql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := newWatcher(getEnv(cmd), args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return w.run(ctx)
		},
	}
}

// watcher recompiles query files on change.
type watcher struct {
	env    *Env
	out    io.Writer
	errOut io.Writer
	delay  time.Duration

	dirs  []string
	files map[string]bool

	mu      sync.Mutex
	pending map[string]bool
	reload  bool
	timer   *time.Timer

	// flushes counts scheduled and running flushes; run waits for them.
	flushes sync.WaitGroup

	// flushMu serializes recompiles and their output.
	flushMu sync.Mutex
}

func newWatcher(env *Env, paths []string, out, errOut io.Writer) *watcher {
	w := &watcher{
		env:     env,
		out:     out,
		errOut:  errOut,
		delay:   debounceDelay,
		files:   make(map[string]bool),
		pending: make(map[string]bool),
	}
	for _, p := range paths {
		p = filepath.Clean(p)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			w.files[p] = true
			continue
		}
		w.dirs = append(w.dirs, p)
	}
	return w
}

func (w *watcher) run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.dirs {
		if err := watchDirRecursive(fw, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	for file := range w.files {
		if err := fw.Add(filepath.Dir(file)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", file, err)
		}
	}
	if dir := w.env.Config.MacrosDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := watchDirRecursive(fw, dir); err != nil {
				w.env.Logger.Warn("failed to watch macros directory", "dir", dir, "error", err)
			}
		}
	}

	w.compileAll(ctx)

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.stopTimer()
			w.mu.Unlock()
			w.flushes.Wait()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.env.Logger.Error("watcher error", "error", err)
		}
	}
}

func (w *watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watchDirRecursive(fw, event.Name); err != nil {
				w.env.Logger.Warn("failed to watch directory", "dir", event.Name, "error", err)
			}
			return
		}
	}

	path := filepath.Clean(event.Name)
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case filepath.Ext(path) == macro.Extension:
		w.reload = true
	case w.tracks(path):
		w.pending[path] = true
	default:
		return
	}

	w.env.Logger.Debug("file changed", "file", path)
	w.stopTimer()
	w.flushes.Add(1)
	w.timer = time.AfterFunc(w.delay, func() {
		defer w.flushes.Done()
		w.flush(ctx)
	})
}

// stopTimer cancels a scheduled flush that has not started. Callers hold mu.
func (w *watcher) stopTimer() {
	if w.timer != nil && w.timer.Stop() {
		w.flushes.Done()
	}
	w.timer = nil
}

// tracks reports whether path is a query file under a watched path.
func (w *watcher) tracks(path string) bool {
	if w.files[path] {
		return true
	}
	if !strings.HasSuffix(path, loader.Extension) {
		return false
	}
	for _, dir := range w.dirs {
		if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// flush recompiles what changed since the last flush.
func (w *watcher) flush(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.mu.Lock()
	reload := w.reload
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.reload = false
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if reload {
		w.flushMu.Lock()
		w.env.macros = nil
		w.flushMu.Unlock()
		w.compileAll(ctx)
		return
	}

	sort.Strings(paths)
	var queries []*loader.Query
	for _, p := range paths {
		q, err := loader.Load(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				_, _ = fmt.Fprintf(w.errOut, "%v\n", err)
			}
			continue
		}
		queries = append(queries, q)
	}
	w.compile(ctx, queries)
}

// compileAll compiles every watched query file.
func (w *watcher) compileAll(ctx context.Context) {
	var queries []*loader.Query
	for _, dir := range w.dirs {
		found, err := loader.ScanDir(dir)
		if err != nil {
			_, _ = fmt.Fprintf(w.errOut, "%v\n", err)
			continue
		}
		queries = append(queries, found...)
	}

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		q, err := loader.Load(f)
		if err != nil {
			_, _ = fmt.Fprintf(w.errOut, "%v\n", err)
			continue
		}
		queries = append(queries, q)
	}
	w.compile(ctx, queries)
}

func (w *watcher) compile(ctx context.Context, queries []*loader.Query) {
	if len(queries) == 0 {
		return
	}

	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	results, err := compileAll(ctx, w.env, queries)
	if err != nil {
		_, _ = fmt.Fprintf(w.errOut, "%v\n", err)
		return
	}
	if w.env.Config.Pretty {
		prettify(results)
	}
	writeCompiledText(w.out, w.errOut, results)
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
// Hidden directories are skipped.
func watchDirRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

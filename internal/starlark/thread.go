// Package starlark provides the Starlark runtime shared by macros: a thread
// pool with an execution budget and the predeclared globals.
package starlark

import (
	"sync"

	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds the computation of one macro call.
const DefaultMaxSteps = 1_000_000

// ThreadPool manages a pool of Starlark threads. Compilers running on
// different goroutines share one pool.
type ThreadPool struct {
	mu       sync.Mutex
	threads  []*starlark.Thread
	maxSize  int
	maxSteps uint64
}

// NewThreadPool creates a pool keeping at most maxSize idle threads. Each
// thread may run maxSteps steps per call; 0 selects DefaultMaxSteps.
func NewThreadPool(maxSize int, maxSteps uint64) *ThreadPool {
	if maxSize <= 0 {
		maxSize = 10
	}
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}
	return &ThreadPool{
		threads:  make([]*starlark.Thread, 0, maxSize),
		maxSize:  maxSize,
		maxSteps: maxSteps,
	}
}

// Get retrieves a thread from the pool or creates a new one.
// The thread name is used for error reporting.
func (p *ThreadPool) Get(name string) *starlark.Thread {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.threads); n > 0 {
		thread := p.threads[n-1]
		p.threads = p.threads[:n-1]
		thread.Name = name
		thread.Steps = 0
		return thread
	}

	thread := &starlark.Thread{
		Name:  name,
		Print: func(_ *starlark.Thread, _ string) {},
	}
	thread.SetMaxExecutionSteps(p.maxSteps)
	return thread
}

// Put returns a thread to the pool for reuse. A thread whose call failed
// may have been cancelled and must not be put back.
func (p *ThreadPool) Put(thread *starlark.Thread) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.threads) < p.maxSize {
		thread.Name = ""
		p.threads = append(p.threads, thread)
	}
}

// Size returns the current number of idle threads.
func (p *ThreadPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.threads)
}

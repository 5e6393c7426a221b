// Package cleanup collects process-exit hooks such as closing SDK clients
// and log files, so commands can return early without leaking them.
package cleanup

import (
	"errors"
	"fmt"
	"sync"
)

var (
	mu    sync.Mutex
	hooks []hook
)

type hook struct {
	name string
	fn   func() error
}

// Register adds a named hook. Hooks run in LIFO order.
func Register(name string, fn func() error) {
	if fn == nil {
		return
	}
	mu.Lock()
	hooks = append(hooks, hook{name: name, fn: fn})
	mu.Unlock()
}

// RunAll runs and clears every registered hook. All hooks run even when
// some fail; the failures are joined.
func RunAll() error {
	mu.Lock()
	local := hooks
	hooks = nil
	mu.Unlock()

	var errs []error
	for i := len(local) - 1; i >= 0; i-- {
		if err := local[i].fn(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", local[i].name, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("cleanup failed: %w", errors.Join(errs...))
}

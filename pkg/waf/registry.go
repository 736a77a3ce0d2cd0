package waf

import (
	"fmt"
	"sort"
	"sync"
)

var (
	loadersMu sync.RWMutex
	loaders   = make(map[string]Loader)
)

// Register makes an engine binding available under the given name.
// It panics on a duplicate or nil registration, mirroring the database/sql
// driver convention: bindings register from their package init.
func Register(name string, loader Loader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()

	if loader == nil {
		panic("waf: Register loader is nil")
	}
	if _, dup := loaders[name]; dup {
		panic(fmt.Sprintf("waf: Register called twice for loader %q", name))
	}
	loaders[name] = loader
}

// Lookup returns the loader registered under name. An empty name selects
// the sole registered binding, if there is exactly one.
func Lookup(name string) (Loader, error) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()

	if name == "" {
		if len(loaders) == 1 {
			for _, l := range loaders {
				return l, nil
			}
		}
		if len(loaders) == 0 {
			return nil, ErrNoEngine
		}
		return nil, fmt.Errorf("multiple waf engine bindings registered (%v), one must be selected", registeredLocked())
	}

	l, ok := loaders[name]
	if !ok {
		return nil, fmt.Errorf("unknown waf engine binding %q (registered: %v)", name, registeredLocked())
	}
	return l, nil
}

// Registered returns the names of all registered bindings, sorted.
func Registered() []string {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	return registeredLocked()
}

func registeredLocked() []string {
	names := make([]string, 0, len(loaders))
	for name := range loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

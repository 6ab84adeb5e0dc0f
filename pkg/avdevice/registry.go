package avdevice

import "sync"

var (
	registryMu sync.Mutex
	backends   = make(map[string]Backend)
)

// RegisterBackend makes a backend available under a name. Platform packages
// call this from init.
func RegisterBackend(name string, b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = b
}

// DefaultBackend returns an arbitrary registered backend, or nil when no
// platform package has been linked in.
func DefaultBackend() Backend {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, b := range backends {
		return b
	}
	return nil
}

// LookupBackend returns the backend registered under name.
func LookupBackend(name string) (Backend, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	b, ok := backends[name]
	return b, ok
}

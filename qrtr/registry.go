package qrtr

import "fmt"

// Registry tracks which PDS paths currently have a live Conn, standing
// in for driver_pds.c's static pds_devices[QMI_PDS_MAX] array. Unlike
// the C original it is not a process-global: a Context owns one
// Registry and passes it to every Session it opens, so two independent
// Contexts in the same process (e.g. in tests) never collide.
type Registry struct {
	capacity int
	paths    map[string]struct{}
}

// NewRegistry allocates a Registry with room for capacity concurrent
// PDS paths (the C driver hardcodes 16, QMI_PDS_MAX).
func NewRegistry(capacity int) *Registry {
	return &Registry{capacity: capacity, paths: make(map[string]struct{}, capacity)}
}

// Register records path as in use, failing if it's already registered
// (qmi_pds_open's "Invalid PDS path already specified" check) or the
// registry is full ("Limit of PDS devices reached").
func (r *Registry) Register(path string) error {
	if _, dup := r.paths[path]; dup {
		return fmt.Errorf("qrtr: path %q already open", path)
	}
	if len(r.paths) >= r.capacity {
		return fmt.Errorf("qrtr: limit of %d PDS devices reached", r.capacity)
	}
	r.paths[path] = struct{}{}
	return nil
}

// Unregister frees path. Unregistering a path that was never
// registered (or already freed) is a no-op, matching qmi_pds_close's
// tolerant scan-and-clear loop.
func (r *Registry) Unregister(path string) {
	delete(r.paths, path)
}

// Len reports how many paths are currently registered.
func (r *Registry) Len() int { return len(r.paths) }

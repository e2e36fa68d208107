package playback

// Registry tracks which named entities are live on the surface. It holds
// handles, not the resources behind them.
type Registry struct {
	handles map[string]Handle
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

func (r *Registry) Lookup(name string) (Handle, bool) {
	h, ok := r.handles[name]
	return h, ok
}

// Put records a handle, keeping first-reference order for new names.
func (r *Registry) Put(name string, h Handle) {
	if _, ok := r.handles[name]; !ok {
		r.order = append(r.order, name)
	}
	r.handles[name] = h
}

func (r *Registry) Remove(name string) bool {
	if _, ok := r.handles[name]; !ok {
		return false
	}
	delete(r.handles, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Names lists live names in the order they were first referenced.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	return len(r.handles)
}

func (r *Registry) Reset() {
	r.handles = make(map[string]Handle)
	r.order = nil
}

package publish

import (
	"context"

	"crosspost/internal/social"
)

// Adapter pushes one unit of content to one kind of external
// destination. Exactly one outbound call per invocation, no retries.
// A returned id means the platform durably accepted the content; an
// error means it accepted nothing.
type Adapter interface {
	Publish(ctx context.Context, account *social.Account, c Content) (string, error)
}

// Registry maps a platform kind to its adapter. Adding a platform means
// registering an adapter here, not branching on a string.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

func (r *Registry) Register(kind string, a Adapter) {
	r.adapters[kind] = a
}

func (r *Registry) Adapter(kind string) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

package resource

import (
	"context"
	"maps"

	"github.com/imamik/unicloud/internal/state"
)

// Payload is the raw description of a resource as last reported by its provider.
type Payload struct {
	ID         string
	Name       string
	Status     string
	Zone       string
	Attributes map[string]string
}

func (p Payload) clone() Payload {
	p.Attributes = maps.Clone(p.Attributes)
	return p
}

// StatusSource describes resources by ID.
//
// Describe reports found=false with a nil error when the resource does not
// exist. Any other failure is returned as an error.
type StatusSource interface {
	Describe(ctx context.Context, kind state.Kind, id string) (p Payload, found bool, err error)
}

// StatusSourceFunc adapts a function to a StatusSource.
type StatusSourceFunc func(ctx context.Context, kind state.Kind, id string) (Payload, bool, error)

// Describe implements StatusSource.
func (f StatusSourceFunc) Describe(ctx context.Context, kind state.Kind, id string) (Payload, bool, error) {
	return f(ctx, kind, id)
}

// Tracked is a cached view of a provider resource.
type Tracked struct {
	Provider state.Provider
	Kind     state.Kind
	ID       string

	payload Payload
	exists  bool
	state   state.State
}

// NewTracked returns a view of a resource that has not been described yet.
// Its state is Unknown until the first refresh.
func NewTracked(p state.Provider, k state.Kind, id string) *Tracked {
	return &Tracked{
		Provider: p,
		Kind:     k,
		ID:       id,
		payload:  Payload{ID: id},
		state:    state.Unknown,
	}
}

// FromPayload returns a view seeded with a payload the caller already holds,
// such as the result of a create call.
func FromPayload(p state.Provider, k state.Kind, payload Payload) *Tracked {
	r := &Tracked{Provider: p, Kind: k, ID: payload.ID}
	r.observe(payload)
	return r
}

// Payload returns a copy of the cached payload.
func (r *Tracked) Payload() Payload {
	return r.payload.clone()
}

// Exists reports whether the provider knew the resource at the last observation.
func (r *Tracked) Exists() bool {
	return r.exists
}

// State returns the last known canonical state.
func (r *Tracked) State() state.State {
	return r.state
}

// Name returns the cached display name.
func (r *Tracked) Name() string {
	return r.payload.Name
}

// Zone returns the cached placement zone.
func (r *Tracked) Zone() string {
	return r.payload.Zone
}

// Status returns the cached raw provider status.
func (r *Tracked) Status() string {
	return r.payload.Status
}

func (r *Tracked) observe(p Payload) {
	r.payload = p.clone()
	r.exists = true
	r.state = state.Normalize(r.Provider, r.Kind, p.Status)
}

func (r *Tracked) vanish() {
	r.exists = false
	r.state = state.Unknown
}

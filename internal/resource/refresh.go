package resource

import (
	"context"
	"fmt"
)

// Refresh re-describes the resource and updates the receiver in place.
//
// A found resource replaces the cached payload wholesale. A missing resource
// keeps every cached field, clears the existence flag and reports Unknown.
// A describe error leaves the cached view untouched.
func (r *Tracked) Refresh(ctx context.Context, src StatusSource) error {
	p, found, err := src.Describe(ctx, r.Kind, r.ID)
	if err != nil {
		return fmt.Errorf("failed to describe %s %s: %w", r.Kind, r.ID, err)
	}
	if !found {
		r.vanish()
		return nil
	}
	r.observe(p)
	return nil
}

// Refresh refreshes r against src and returns r.
func Refresh(ctx context.Context, src StatusSource, r *Tracked) (*Tracked, error) {
	if err := r.Refresh(ctx, src); err != nil {
		return r, err
	}
	return r, nil
}

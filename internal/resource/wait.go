package resource

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/state"
	"github.com/imamik/unicloud/internal/util/retry"
)

// ErrVanished is returned by WaitFor when the resource disappears while waiting.
var ErrVanished = errors.New("resource no longer exists")

// ErrFailed is returned by WaitFor when the resource enters the error state.
var ErrFailed = errors.New("resource entered error state")

type waitConfig struct {
	log       logr.Logger
	retryOpts []retry.Option
}

// WaitOption configures WaitFor.
type WaitOption func(*waitConfig)

// WithWaitLogger logs each poll at verbosity 1.
func WithWaitLogger(log logr.Logger) WaitOption {
	return func(c *waitConfig) {
		c.log = log
	}
}

// WithRetry passes options to the underlying backoff loop.
func WithRetry(opts ...retry.Option) WaitOption {
	return func(c *waitConfig) {
		c.retryOpts = append(c.retryOpts, opts...)
	}
}

// WaitFor refreshes r until its state is one of targets.
//
// Describe failures stop the wait. So does the resource entering Error or
// vanishing, unless Error or Unknown respectively is among the targets.
// The deadline comes from ctx and the attempt budget from the retry options.
func WaitFor(ctx context.Context, src StatusSource, r *Tracked, targets []state.State, opts ...WaitOption) error {
	if len(targets) == 0 {
		return fmt.Errorf("no target states given for %s %s", r.Kind, r.ID)
	}
	for _, t := range targets {
		if !r.Kind.Valid(t) {
			return fmt.Errorf("state %q is not valid for %s", t, r.Kind)
		}
	}

	cfg := &waitConfig{log: logr.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}

	poll := func() error {
		if err := r.Refresh(ctx, src); err != nil {
			return retry.Fatal(err)
		}
		cfg.log.V(1).Info("polled resource", "kind", r.Kind, "id", r.ID, "status", r.Status(), "state", r.State())

		if slices.Contains(targets, r.State()) {
			return nil
		}
		switch {
		case !r.Exists():
			return retry.Fatal(fmt.Errorf("%s %s: %w", r.Kind, r.ID, ErrVanished))
		case r.State() == state.Error:
			return retry.Fatal(fmt.Errorf("%s %s: %w", r.Kind, r.ID, ErrFailed))
		}
		return fmt.Errorf("%s %s is %s, waiting for %v", r.Kind, r.ID, r.State(), targets)
	}

	if err := retry.WithExponentialBackoff(ctx, poll, cfg.retryOpts...); err != nil {
		return fmt.Errorf("failed to wait for %s %s: %w", r.Kind, r.ID, err)
	}
	return nil
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/unicloud/internal/cloud"
	"github.com/imamik/unicloud/internal/metrics"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
	"github.com/imamik/unicloud/internal/util/async"
)

// StatusOptions holds the status command's flags.
type StatusOptions struct {
	ConfigPath  string
	Kind        string
	IDs         []string
	Wait        string
	MetricsAddr string
	JSON        bool
	Verbosity   int
	Out         io.Writer
}

// Status refreshes the given resources and prints their canonical states.
func Status(ctx context.Context, opts StatusOptions) error {
	out := writer(opts.Out)
	logger := newLogger(opts.Verbosity)

	kind, err := state.ParseKind(opts.Kind)
	if err != nil {
		return err
	}
	var target state.State
	if opts.Wait != "" {
		if target, err = state.ParseState(kind, opts.Wait); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		stop, err := serveMetrics(opts.MetricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	timeouts := loadTimeouts()
	p, err := newProvider(ctx, cfg, cloud.WithLogger(logger), cloud.WithTimeouts(timeouts), cloud.WithMetrics())
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	tracked := make([]*resource.Tracked, len(opts.IDs))
	tasks := make([]async.Task, len(opts.IDs))
	for i, id := range opts.IDs {
		r := resource.NewTracked(p.Name(), kind, id)
		tracked[i] = r
		tasks[i] = async.Task{Name: id, Func: func(ctx context.Context) error {
			if target != "" {
				err := waitFor(ctx, p, r, []state.State{target}, timeouts, logger)
				recordObservation(r, err)
				return err
			}
			err := r.Refresh(ctx, p)
			recordObservation(r, err)
			return err
		}}
	}

	if target != "" {
		log.Printf("Waiting for %d %s(s) to be %s...", len(tasks), kind, target)
	}
	runErr := async.RunAll(ctx, tasks)

	views := make([]resourceView, len(tracked))
	for i, r := range tracked {
		views[i] = newResourceView(r)
	}
	if opts.JSON {
		if err := writeJSON(out, views); err != nil {
			return err
		}
	} else {
		styled := isTerminal()
		fmt.Fprint(out, renderResources(views, styled))
		if len(views) == 1 && len(views[0].Attributes) > 0 {
			fmt.Fprint(out, renderAttributes(views[0].Attributes, styled))
		}
	}

	if runErr != nil {
		return fmt.Errorf("status failed: %w", runErr)
	}
	return nil
}

// recordObservation publishes a refresh outcome and the resulting state.
func recordObservation(r *resource.Tracked, err error) {
	provider, kind := string(r.Provider), string(r.Kind)

	outcome := metrics.OutcomeFound
	switch {
	case errors.Is(err, resource.ErrVanished) || (err == nil && !r.Exists()):
		outcome = metrics.OutcomeVanished
	case err != nil && !errors.Is(err, resource.ErrFailed) && !errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeError
	}
	metrics.RecordRefresh(provider, kind, outcome)

	all := make([]string, 0, len(r.Kind.States()))
	for _, s := range r.Kind.States() {
		all = append(all, string(s))
	}
	metrics.RecordState(provider, kind, r.ID, string(r.State()), all)
}

// serveMetrics exposes the metrics registry on addr until stop is called.
func serveMetrics(addr string) (stop func(), err error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
	log.Printf("Serving metrics on http://%s/metrics", lis.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/imamik/unicloud/internal/cloud"
	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

// LaunchOptions holds the launch command's flags.
type LaunchOptions struct {
	ConfigPath     string
	LaunchPath     string
	Wait           bool
	CleanupOrphans bool
	JSON           bool
	Verbosity      int
	Out            io.Writer
}

// launchResult is the JSON form of a launch.
type launchResult struct {
	Instance      *resourceView `json:"instance,omitempty"`
	OrphanVolumes []string      `json:"orphan_volumes,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// Launch creates the instance described by the launch file.
func Launch(ctx context.Context, opts LaunchOptions) error {
	out := writer(opts.Out)
	logger := newLogger(opts.Verbosity)

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	lf, err := loadLaunchFile(opts.LaunchPath)
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()
	p, err := newProvider(ctx, cfg, cloud.WithLogger(logger), cloud.WithTimeouts(timeouts), cloud.WithMetrics())
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	launcherOpts := []launch.LauncherOption{launch.WithMetrics()}
	if opts.CleanupOrphans {
		launcherOpts = append(launcherOpts, launch.WithOrphanCleanup(p))
	}
	launcher := cloud.NewLauncher(p, logger, launcherOpts...)

	log.Printf("Launching %s on %s...", lf, p.Name())
	r, launchErr := launcher.Launch(ctx, lf.Request())
	if launchErr != nil {
		var perr *launch.PartialProvisioningError
		if errors.As(launchErr, &perr) && len(perr.VolumeIDs) > 0 {
			log.Printf("Volumes left behind by the failed launch: %v", perr.VolumeIDs)
		}
		if r == nil {
			if opts.JSON {
				res := launchResult{Error: launchErr.Error()}
				if perr != nil {
					res.OrphanVolumes = perr.VolumeIDs
				}
				if err := writeJSON(out, res); err != nil {
					return err
				}
			}
			return fmt.Errorf("launch failed: %w", launchErr)
		}
	}

	if opts.Wait && launchErr == nil {
		log.Printf("Waiting for instance %s to be running...", r.ID)
		if err := waitFor(ctx, p, r, []state.State{state.Running}, timeouts, logger); err != nil {
			_ = printLaunched(out, r, opts.JSON)
			return err
		}
	}

	if err := printLaunched(out, r, opts.JSON); err != nil {
		return err
	}
	if launchErr != nil {
		var created *launch.InstanceCreatedError
		if errors.As(launchErr, &created) {
			return fmt.Errorf("launch incomplete: %w", launchErr)
		}
		return fmt.Errorf("instance %s was created but: %w", r.ID, launchErr)
	}
	return nil
}

func printLaunched(out io.Writer, r *resource.Tracked, jsonOut bool) error {
	view := newResourceView(r)
	if jsonOut {
		return writeJSON(out, launchResult{Instance: &view})
	}
	fmt.Fprint(out, renderResources([]resourceView{view}, isTerminal()))
	return nil
}

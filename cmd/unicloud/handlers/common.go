// Package handlers implements the unicloud commands.
//
// Dependencies that reach a cloud are package variables so tests can
// replace them.
package handlers

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/mattn/go-isatty"

	"github.com/imamik/unicloud/internal/cloud"
	"github.com/imamik/unicloud/internal/config"
	"github.com/imamik/unicloud/internal/platform/aws"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
	"github.com/imamik/unicloud/internal/util/retry"
)

// objectStore is the subset of aws.ObjectStore the bucket command uses.
type objectStore interface {
	CreateBucket(ctx context.Context, bucketName string) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListBuckets(ctx context.Context) ([]aws.Bucket, error)
	ListObjects(ctx context.Context, bucketName, prefix string) ([]string, error)
	DeleteBucket(ctx context.Context, bucketName string) error
}

var (
	loadConfig     = config.LoadFile
	loadLaunchFile = config.LoadLaunchFile
	loadTimeouts   = config.LoadTimeouts
	newProvider    = cloud.New
	newObjectStore = func(ctx context.Context, cfg config.AWSConfig) (objectStore, error) {
		return aws.NewObjectStore(ctx, cfg)
	}
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// newLogger returns a logger writing through the standard log package.
// Messages above verbosity are dropped.
func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s: %s", prefix, args)
			return
		}
		log.Println(args)
	}, funcr.Options{Verbosity: verbosity})
}

// writer returns w, or stdout when w is nil.
func writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// waitFor polls r until it reaches one of targets, bounded by the wait
// timeout and the retry budget.
func waitFor(ctx context.Context, src resource.StatusSource, r *resource.Tracked, targets []state.State, t *config.Timeouts, logger logr.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, t.Wait)
	defer cancel()

	return resource.WaitFor(ctx, src, r, targets,
		resource.WithWaitLogger(logger),
		resource.WithRetry(
			retry.WithMaxRetries(t.RetryMaxAttempts),
			retry.WithInitialDelay(t.RetryInitialDelay),
			retry.WithMaxDelay(maxPollDelay),
		),
	)
}

const maxPollDelay = 30 * time.Second

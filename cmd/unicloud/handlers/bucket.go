package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/imamik/unicloud/internal/state"
)

// BucketAction selects the bucket subcommand.
type BucketAction string

const (
	BucketCreate      BucketAction = "create"
	BucketExists      BucketAction = "exists"
	BucketList        BucketAction = "list"
	BucketListObjects BucketAction = "ls"
	BucketDelete      BucketAction = "delete"
)

// BucketOptions holds the bucket command's arguments.
type BucketOptions struct {
	ConfigPath string
	Action     BucketAction
	Name       string
	Prefix     string
	Out        io.Writer
}

// Bucket runs one bucket operation against the configured AWS region.
func Bucket(ctx context.Context, opts BucketOptions) error {
	out := writer(opts.Out)

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.ProviderName() != state.ProviderAWS {
		return fmt.Errorf("bucket commands require the aws provider (configured: %s)", cfg.Provider)
	}

	store, err := newObjectStore(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	switch opts.Action {
	case BucketCreate:
		if err := store.CreateBucket(ctx, opts.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Bucket %s is ready\n", opts.Name)

	case BucketExists:
		ok, err := store.BucketExists(ctx, opts.Name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("bucket %s does not exist", opts.Name)
		}
		fmt.Fprintf(out, "Bucket %s exists\n", opts.Name)

	case BucketList:
		buckets, err := store.ListBuckets(ctx)
		if err != nil {
			return err
		}
		for _, b := range buckets {
			created := "-"
			if !b.Created.IsZero() {
				created = b.Created.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%s  %s\n", created, b.Name)
		}

	case BucketListObjects:
		keys, err := store.ListObjects(ctx, opts.Name, opts.Prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(out, k)
		}

	case BucketDelete:
		if err := store.DeleteBucket(ctx, opts.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Bucket %s deleted\n", opts.Name)

	default:
		return fmt.Errorf("unknown bucket action %q", opts.Action)
	}
	return nil
}

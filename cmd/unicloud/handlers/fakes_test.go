package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/imamik/unicloud/internal/cloud"
	"github.com/imamik/unicloud/internal/config"
	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/platform/aws"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

type fakeProvider struct {
	mu        sync.Mutex
	resources map[string]resource.Payload
	// sequences are consumed one status per describe; the last one sticks.
	sequences map[string][]string

	describeErr error
	createErr   error
	nameErr     error

	instanceRequests []launch.InstanceRequest
	volumeRequests   []launch.VolumeRequest
	deleted          []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		resources: map[string]resource.Payload{},
		sequences: map[string][]string{},
	}
}

func (f *fakeProvider) Name() state.Provider          { return state.ProviderAWS }
func (f *fakeProvider) SlotNaming() launch.SlotNaming { return launch.AWSSlotNaming }

func (f *fakeProvider) Describe(_ context.Context, _ state.Kind, id string) (resource.Payload, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.describeErr != nil {
		return resource.Payload{}, false, f.describeErr
	}
	p, ok := f.resources[id]
	if !ok {
		return resource.Payload{}, false, nil
	}
	if seq := f.sequences[id]; len(seq) > 0 {
		p.Status = seq[0]
		if len(seq) > 1 {
			f.sequences[id] = seq[1:]
		}
	}
	return p, true, nil
}

func (f *fakeProvider) CreateVolume(_ context.Context, req launch.VolumeRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumeRequests = append(f.volumeRequests, req)
	id := fmt.Sprintf("vol-%d", len(f.volumeRequests))
	f.resources[id] = resource.Payload{ID: id, Name: req.Name, Status: "available", Zone: req.Zone}
	return id, nil
}

func (f *fakeProvider) DeleteVolume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	delete(f.resources, id)
	return nil
}

func (f *fakeProvider) CreateInstance(_ context.Context, req launch.InstanceRequest) (resource.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instanceRequests = append(f.instanceRequests, req)
	if f.createErr != nil {
		return resource.Payload{}, f.createErr
	}
	p := resource.Payload{ID: "i-0abc", Status: "pending", Zone: req.Zone}
	f.resources[p.ID] = resource.Payload{ID: p.ID, Name: req.Name, Status: "running", Zone: req.Zone}
	return p, nil
}

func (f *fakeProvider) SetInstanceName(_ context.Context, _ string, _ string) error {
	return f.nameErr
}

type fakeObjectStore struct {
	buckets map[string][]string
	err     error
}

func (f *fakeObjectStore) CreateBucket(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.buckets[name]; !ok {
		f.buckets[name] = nil
	}
	return nil
}

func (f *fakeObjectStore) BucketExists(_ context.Context, name string) (bool, error) {
	_, ok := f.buckets[name]
	return ok, f.err
}

func (f *fakeObjectStore) ListBuckets(_ context.Context) ([]aws.Bucket, error) {
	out := make([]aws.Bucket, 0, len(f.buckets))
	for name := range f.buckets {
		out = append(out, aws.Bucket{Name: name, Created: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)})
	}
	return out, f.err
}

func (f *fakeObjectStore) ListObjects(_ context.Context, name, _ string) ([]string, error) {
	keys, ok := f.buckets[name]
	if !ok {
		return nil, errors.New("NoSuchBucket")
	}
	return keys, f.err
}

func (f *fakeObjectStore) DeleteBucket(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.buckets, name)
	return nil
}

// stubDeps replaces every package level dependency for the duration of the test.
func stubDeps(t *testing.T, cfg *config.Config, p *fakeProvider, lf *config.LaunchFile) {
	t.Helper()

	origLoad, origLaunch, origTimeouts := loadConfig, loadLaunchFile, loadTimeouts
	origProvider, origStore, origTerm := newProvider, newObjectStore, isTerminal
	t.Cleanup(func() {
		loadConfig, loadLaunchFile, loadTimeouts = origLoad, origLaunch, origTimeouts
		newProvider, newObjectStore, isTerminal = origProvider, origStore, origTerm
	})

	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	loadLaunchFile = func(string) (*config.LaunchFile, error) { return lf, nil }
	loadTimeouts = func() *config.Timeouts {
		return &config.Timeouts{
			InstanceCreate:    time.Second,
			VolumeCreate:      time.Second,
			Wait:              5 * time.Second,
			Delete:            time.Second,
			RetryMaxAttempts:  5,
			RetryInitialDelay: time.Millisecond,
		}
	}
	newProvider = func(context.Context, *config.Config, ...cloud.Option) (cloud.Provider, error) {
		return p, nil
	}
	isTerminal = func() bool { return false }
}

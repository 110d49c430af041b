package openstack

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-goose/goose/v5/cinder"
	gooseerrors "github.com/go-goose/goose/v5/errors"
	"github.com/go-goose/goose/v5/nova"
	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/config"
)

type fakeNova struct {
	mu sync.Mutex

	servers map[string]nova.ServerDetail
	images  map[string]nova.ImageDetail
	runErr  error
	nameErr error

	runOpts *nova.RunServerOpts
	renamed map[string]string
}

func newFakeNova() *fakeNova {
	return &fakeNova{
		servers: map[string]nova.ServerDetail{},
		images:  map[string]nova.ImageDetail{},
		renamed: map[string]string{},
	}
}

func notFound(kind, id string) error {
	return gooseerrors.NewNotFoundf(nil, id, "%s %s not found", kind, id)
}

func (f *fakeNova) GetServer(id string) (*nova.ServerDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	srv, ok := f.servers[id]
	if !ok {
		return nil, notFound("server", id)
	}
	return &srv, nil
}

func (f *fakeNova) GetImageDetail(id string) (*nova.ImageDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	img, ok := f.images[id]
	if !ok {
		return nil, notFound("image", id)
	}
	return &img, nil
}

func (f *fakeNova) RunServer(opts nova.RunServerOpts) (*nova.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runOpts = &opts
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &nova.Entity{Id: "srv-1", Name: opts.Name}, nil
}

func (f *fakeNova) UpdateServerName(id, name string) (*nova.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nameErr != nil {
		return nil, f.nameErr
	}
	f.renamed[id] = name
	return &nova.Entity{Id: id, Name: name}, nil
}

// fakeCinder creates volumes that report statuses in order, one per GetVolume call.
type fakeCinder struct {
	mu sync.Mutex

	volumes   map[string]cinder.Volume
	snapshots map[string]cinder.Snapshot
	statuses  []string
	createErr error

	created []cinder.CreateVolumeVolumeParams
	deleted []string
}

func newFakeCinder() *fakeCinder {
	return &fakeCinder{
		volumes:   map[string]cinder.Volume{},
		snapshots: map[string]cinder.Snapshot{},
	}
}

func (f *fakeCinder) GetVolume(id string) (*cinder.GetVolumeResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volumes[id]
	if !ok {
		return nil, notFound("volume", id)
	}
	if len(f.statuses) > 0 {
		v.Status = f.statuses[0]
		f.statuses = f.statuses[1:]
		f.volumes[id] = v
	}
	return &cinder.GetVolumeResults{Volume: v}, nil
}

func (f *fakeCinder) GetSnapshot(id string) (*cinder.GetSnapshotResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snapshots[id]
	if !ok {
		return nil, notFound("snapshot", id)
	}
	return &cinder.GetSnapshotResults{Snapshot: s}, nil
}

func (f *fakeCinder) CreateVolume(args cinder.CreateVolumeVolumeParams) (*cinder.CreateVolumeResults, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, args)
	id := fmt.Sprintf("vol-%d", len(f.created))
	v := cinder.Volume{ID: id, Name: args.Name, Size: args.Size, Status: "creating", AvailabilityZone: args.AvailabilityZone}
	f.volumes[id] = v
	return &cinder.CreateVolumeResults{Volume: v}, nil
}

func (f *fakeCinder) DeleteVolume(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.volumes[id]; !ok {
		return notFound("volume", id)
	}
	delete(f.volumes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func testClient(n *fakeNova, c *fakeCinder) *Client {
	client, err := NewClient(config.OpenStackConfig{},
		WithServices(n, c),
		WithLogger(logr.Discard()),
		WithTimeouts(&config.Timeouts{
			InstanceCreate:    5 * time.Second,
			VolumeCreate:      5 * time.Second,
			Wait:              5 * time.Second,
			Delete:            5 * time.Second,
			RetryMaxAttempts:  5,
			RetryInitialDelay: time.Millisecond,
		}),
	)
	if err != nil {
		panic(err)
	}
	return client
}

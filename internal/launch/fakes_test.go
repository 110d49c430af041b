package launch

import (
	"context"
	"fmt"
	"sync"

	"github.com/imamik/unicloud/internal/resource"
)

// fakeProvisioner hands out sequential volume IDs and records requests.
type fakeProvisioner struct {
	requests []VolumeRequest
	// failAt makes the n-th call (1-based) fail; 0 never fails.
	failAt int
	err    error
	// leak makes the failing call still return the ID it created.
	leak bool
}

func (f *fakeProvisioner) CreateVolume(_ context.Context, req VolumeRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.failAt == len(f.requests) {
		if f.leak {
			return fmt.Sprintf("vol-%d", len(f.requests)), f.err
		}
		return "", f.err
	}
	return fmt.Sprintf("vol-%d", len(f.requests)), nil
}

// fakeCreator records instance creation and naming calls.
type fakeCreator struct {
	createFn func(req InstanceRequest) (resource.Payload, error)
	nameErr  error

	requests []InstanceRequest
	names    map[string]string
}

func (f *fakeCreator) CreateInstance(_ context.Context, req InstanceRequest) (resource.Payload, error) {
	f.requests = append(f.requests, req)
	if f.createFn != nil {
		return f.createFn(req)
	}
	return resource.Payload{ID: "i-123", Status: "pending", Zone: req.Zone}, nil
}

func (f *fakeCreator) SetInstanceName(_ context.Context, id, name string) error {
	if f.nameErr != nil {
		return f.nameErr
	}
	if f.names == nil {
		f.names = map[string]string{}
	}
	f.names[id] = name
	return nil
}

// fakeDeleter deletes volumes concurrently; IDs in fail are rejected.
type fakeDeleter struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]error
}

func (f *fakeDeleter) DeleteVolume(_ context.Context, id string) error {
	if err, ok := f.fail[id]; ok {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

// checkingCreator rejects configurations before the launcher provisions.
type checkingCreator struct {
	*fakeCreator
	err     error
	checked int
}

func (c *checkingCreator) CheckConfig(*Config) error {
	c.checked++
	return c.err
}

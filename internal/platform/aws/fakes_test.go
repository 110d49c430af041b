package aws

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"

	"github.com/imamik/unicloud/internal/config"
)

// fakeEC2 is an in-memory EC2API. Volumes become in-use when attached.
type fakeEC2 struct {
	mu sync.Mutex

	instances map[string]types.Instance
	volumes   map[string]types.Volume
	snapshots map[string]types.Snapshot
	images    map[string]types.Image

	describeErr error
	runErr      error
	attachErr   error
	deleteErr   error
	// newVolumeState overrides the state of created volumes.
	newVolumeState types.VolumeState

	runInput     *ec2.RunInstancesInput
	createInputs []*ec2.CreateVolumeInput
	attachInputs []*ec2.AttachVolumeInput
	modifyInput  *ec2.ModifyInstanceAttributeInput
	tagInputs    []*ec2.CreateTagsInput
	deleted      []string
	nextVolume   int
}

func newFakeEC2() *fakeEC2 {
	return &fakeEC2{
		instances: map[string]types.Instance{},
		volumes:   map[string]types.Volume{},
		snapshots: map[string]types.Snapshot{},
		images:    map[string]types.Image{},
	}
}

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "does not exist"}
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	var out []types.Instance
	for _, id := range in.InstanceIds {
		inst, ok := f.instances[id]
		if !ok {
			return nil, apiError("InvalidInstanceID.NotFound")
		}
		out = append(out, inst)
	}
	return &ec2.DescribeInstancesOutput{Reservations: []types.Reservation{{Instances: out}}}, nil
}

func (f *fakeEC2) DescribeVolumes(_ context.Context, in *ec2.DescribeVolumesInput, _ ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	var out []types.Volume
	for _, id := range in.VolumeIds {
		v, ok := f.volumes[id]
		if !ok {
			return nil, apiError("InvalidVolume.NotFound")
		}
		out = append(out, v)
	}
	return &ec2.DescribeVolumesOutput{Volumes: out}, nil
}

func (f *fakeEC2) DescribeSnapshots(_ context.Context, in *ec2.DescribeSnapshotsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	var out []types.Snapshot
	for _, id := range in.SnapshotIds {
		s, ok := f.snapshots[id]
		if !ok {
			return nil, apiError("InvalidSnapshot.NotFound")
		}
		out = append(out, s)
	}
	return &ec2.DescribeSnapshotsOutput{Snapshots: out}, nil
}

func (f *fakeEC2) DescribeImages(_ context.Context, in *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	// Deregistered AMIs disappear from the result instead of failing.
	var out []types.Image
	for _, id := range in.ImageIds {
		if img, ok := f.images[id]; ok {
			out = append(out, img)
		}
	}
	return &ec2.DescribeImagesOutput{Images: out}, nil
}

func (f *fakeEC2) CreateVolume(_ context.Context, in *ec2.CreateVolumeInput, _ ...func(*ec2.Options)) (*ec2.CreateVolumeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createInputs = append(f.createInputs, in)
	f.nextVolume++
	id := "vol-" + string(rune('0'+f.nextVolume))
	volState := types.VolumeStateAvailable
	if f.newVolumeState != "" {
		volState = f.newVolumeState
	}
	f.volumes[id] = types.Volume{
		VolumeId:         aws.String(id),
		State:            volState,
		AvailabilityZone: in.AvailabilityZone,
		Size:             in.Size,
	}
	return &ec2.CreateVolumeOutput{VolumeId: aws.String(id)}, nil
}

func (f *fakeEC2) DeleteVolume(_ context.Context, in *ec2.DeleteVolumeInput, _ ...func(*ec2.Options)) (*ec2.DeleteVolumeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	id := aws.ToString(in.VolumeId)
	if _, ok := f.volumes[id]; !ok {
		return nil, apiError("InvalidVolume.NotFound")
	}
	delete(f.volumes, id)
	f.deleted = append(f.deleted, id)
	return &ec2.DeleteVolumeOutput{}, nil
}

func (f *fakeEC2) AttachVolume(_ context.Context, in *ec2.AttachVolumeInput, _ ...func(*ec2.Options)) (*ec2.AttachVolumeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachInputs = append(f.attachInputs, in)
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	id := aws.ToString(in.VolumeId)
	v := f.volumes[id]
	v.VolumeId = aws.String(id)
	v.State = types.VolumeStateInUse
	f.volumes[id] = v
	return &ec2.AttachVolumeOutput{}, nil
}

func (f *fakeEC2) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runInput = in
	if f.runErr != nil {
		return nil, f.runErr
	}
	inst := types.Instance{
		InstanceId:   aws.String("i-0abc"),
		InstanceType: in.InstanceType,
		ImageId:      in.ImageId,
		State:        &types.InstanceState{Name: types.InstanceStateNamePending},
		Placement:    in.Placement,
	}
	running := inst
	running.State = &types.InstanceState{Name: types.InstanceStateNameRunning}
	f.instances["i-0abc"] = running
	return &ec2.RunInstancesOutput{Instances: []types.Instance{inst}}, nil
}

func (f *fakeEC2) ModifyInstanceAttribute(_ context.Context, in *ec2.ModifyInstanceAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modifyInput = in
	return &ec2.ModifyInstanceAttributeOutput{}, nil
}

func (f *fakeEC2) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagInputs = append(f.tagInputs, in)
	return &ec2.CreateTagsOutput{}, nil
}

func testClient(api EC2API) *Client {
	return &Client{
		ec2: api,
		timeouts: &config.Timeouts{
			InstanceCreate:    5 * time.Second,
			VolumeCreate:      5 * time.Second,
			Wait:              5 * time.Second,
			Delete:            5 * time.Second,
			RetryMaxAttempts:  3,
			RetryInitialDelay: 10 * time.Millisecond,
		},
		log: logr.Discard(),
	}
}

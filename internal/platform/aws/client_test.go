package aws

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/unicloud/internal/launch"
	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"instance", apiError("InvalidInstanceID.NotFound"), true},
		{"wrapped volume", fmt.Errorf("outer: %w", apiError("InvalidVolume.NotFound")), true},
		{"snapshot", apiError("InvalidSnapshot.NotFound"), true},
		{"ami", apiError("InvalidAMIID.NotFound"), true},
		{"malformed id", apiError("InvalidInstanceID.Malformed"), false},
		{"generic error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestClient_Describe(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.instances["i-1"] = types.Instance{
		InstanceId:   aws.String("i-1"),
		InstanceType: types.InstanceTypeT3Micro,
		ImageId:      aws.String("ami-1"),
		State:        &types.InstanceState{Name: types.InstanceStateNameStopping},
		Placement:    &types.Placement{AvailabilityZone: aws.String("eu-west-1a")},
		Tags:         []types.Tag{{Key: aws.String("Name"), Value: aws.String("web-1")}},
	}
	api.volumes["vol-1"] = types.Volume{
		VolumeId:         aws.String("vol-1"),
		State:            types.VolumeStateInUse,
		AvailabilityZone: aws.String("eu-west-1a"),
		Size:             aws.Int32(20),
		Attachments:      []types.VolumeAttachment{{InstanceId: aws.String("i-1")}},
	}
	api.snapshots["snap-1"] = types.Snapshot{
		SnapshotId:  aws.String("snap-1"),
		State:       types.SnapshotStateCompleted,
		Description: aws.String("nightly"),
		VolumeId:    aws.String("vol-1"),
	}
	api.images["ami-1"] = types.Image{
		ImageId: aws.String("ami-1"),
		Name:    aws.String("ubuntu"),
		State:   types.ImageStatePending,
	}
	c := testClient(api)

	tests := []struct {
		kind  state.Kind
		id    string
		name  string
		zone  string
		state state.State
	}{
		{state.KindInstance, "i-1", "web-1", "eu-west-1a", state.Configuring},
		{state.KindVolume, "vol-1", "", "eu-west-1a", state.InUse},
		{state.KindSnapshot, "snap-1", "nightly", "", state.Available},
		{state.KindImage, "ami-1", "ubuntu", "", state.Pending},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			p, found, err := c.Describe(context.Background(), tt.kind, tt.id)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.id, p.ID)
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.zone, p.Zone)
			assert.Equal(t, tt.state, state.Normalize(state.ProviderAWS, tt.kind, p.Status))
		})
	}
}

func TestClient_Describe_Missing(t *testing.T) {
	t.Parallel()

	c := testClient(newFakeEC2())
	for _, kind := range state.Kinds {
		_, found, err := c.Describe(context.Background(), kind, "missing")
		require.NoError(t, err, kind)
		assert.False(t, found, kind)
	}
}

func TestClient_Describe_Error(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.describeErr = apiError("RequestLimitExceeded")
	_, found, err := testClient(api).Describe(context.Background(), state.KindVolume, "vol-1")
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "failed to describe volume vol-1")
}

func TestClient_RefreshIntegration(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.volumes["vol-1"] = types.Volume{VolumeId: aws.String("vol-1"), State: types.VolumeStateCreating}
	c := testClient(api)

	r := resource.NewTracked(state.ProviderAWS, state.KindVolume, "vol-1")
	require.NoError(t, r.Refresh(context.Background(), c))
	assert.Equal(t, state.Creating, r.State())

	delete(api.volumes, "vol-1")
	require.NoError(t, r.Refresh(context.Background(), c))
	assert.False(t, r.Exists())
}

func TestClient_CreateVolume(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	c := testClient(api)

	id, err := c.CreateVolume(context.Background(), launch.VolumeRequest{Name: "web-1-sdf", SizeGiB: 10, Zone: "eu-west-1a"})
	require.NoError(t, err)
	assert.Equal(t, "vol-1", id)

	require.Len(t, api.createInputs, 1)
	in := api.createInputs[0]
	assert.Equal(t, "eu-west-1a", aws.ToString(in.AvailabilityZone))
	assert.Equal(t, int32(10), aws.ToInt32(in.Size))
	assert.Nil(t, in.SnapshotId)
	require.Len(t, in.TagSpecifications, 1)
	assert.Equal(t, "Name", aws.ToString(in.TagSpecifications[0].Tags[0].Key))
	assert.Equal(t, "web-1-sdf", aws.ToString(in.TagSpecifications[0].Tags[0].Value))

	_, err = c.CreateVolume(context.Background(), launch.VolumeRequest{Name: "x", SizeGiB: 1})
	assert.ErrorContains(t, err, "availability zone is required")
}

func TestClient_DeleteVolume(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.volumes["vol-1"] = types.Volume{VolumeId: aws.String("vol-1")}
	c := testClient(api)

	require.NoError(t, c.DeleteVolume(context.Background(), "vol-1"))
	assert.Equal(t, []string{"vol-1"}, api.deleted)

	// Already gone.
	require.NoError(t, c.DeleteVolume(context.Background(), "vol-1"))

	api.deleteErr = apiError("VolumeInUse")
	assert.ErrorContains(t, c.DeleteVolume(context.Background(), "vol-2"), "failed to delete volume vol-2")
}

func TestClient_CreateInstance(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.volumes["vol-existing"] = types.Volume{VolumeId: aws.String("vol-existing"), State: types.VolumeStateAvailable}
	c := testClient(api)

	cfg := launch.NewConfig().
		AddVolumeDevice(launch.SnapshotSource("snap-root"), 30, true, true).
		AddVolumeDevice(launch.VolumeSource("vol-existing"), 0, false, false).
		AddVolumeDevice(launch.NoSource(), 10, false, true).
		AddEphemeralDevice().
		AddNetwork("subnet-1").
		AddNetwork("subnet-2")
	plan, err := launch.NewCompiler(c, launch.WithSlotNaming(c.SlotNaming())).
		Compile(context.Background(), cfg, "eu-west-1a", launch.ForInstance("web-1"))
	require.NoError(t, err)
	require.Equal(t, []string{"vol-1"}, plan.ProvisionedVolumes())

	p, err := c.CreateInstance(context.Background(), launch.InstanceRequest{
		Name:           "web-1",
		ImageID:        "ami-1",
		InstanceType:   "t3.micro",
		Zone:           "eu-west-1a",
		KeyPair:        "deploy",
		SecurityGroups: []string{"web", "sg-0123"},
		Plan:           plan,
	})
	require.NoError(t, err)
	assert.Equal(t, "i-0abc", p.ID)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "eu-west-1a", p.Zone)

	in := api.runInput
	require.NotNil(t, in)
	assert.Equal(t, "ami-1", aws.ToString(in.ImageId))
	assert.Equal(t, types.InstanceType("t3.micro"), in.InstanceType)
	assert.Equal(t, "deploy", aws.ToString(in.KeyName))
	assert.Equal(t, "subnet-1", aws.ToString(in.SubnetId))
	assert.Equal(t, []string{"web"}, in.SecurityGroups)
	assert.Equal(t, []string{"sg-0123"}, in.SecurityGroupIds)

	require.Len(t, in.BlockDeviceMappings, 2)
	root := in.BlockDeviceMappings[0]
	assert.Equal(t, "/dev/sda1", aws.ToString(root.DeviceName))
	assert.Equal(t, "snap-root", aws.ToString(root.Ebs.SnapshotId))
	assert.Equal(t, int32(30), aws.ToInt32(root.Ebs.VolumeSize))
	assert.True(t, aws.ToBool(root.Ebs.DeleteOnTermination))
	eph := in.BlockDeviceMappings[1]
	assert.Equal(t, "/dev/sdz", aws.ToString(eph.DeviceName))
	assert.Equal(t, "ephemeral0", aws.ToString(eph.VirtualName))

	require.Len(t, api.attachInputs, 2)
	assert.Equal(t, "vol-existing", aws.ToString(api.attachInputs[0].VolumeId))
	assert.Equal(t, "/dev/sdf", aws.ToString(api.attachInputs[0].Device))
	assert.Equal(t, "vol-1", aws.ToString(api.attachInputs[1].VolumeId))
	assert.Equal(t, "/dev/sdg", aws.ToString(api.attachInputs[1].Device))

	require.NotNil(t, api.modifyInput)
	require.Len(t, api.modifyInput.BlockDeviceMappings, 1)
	assert.Equal(t, "vol-1", aws.ToString(api.modifyInput.BlockDeviceMappings[0].Ebs.VolumeId))
}

func TestClient_CreateInstance_NoPlan(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	_, err := testClient(api).CreateInstance(context.Background(), launch.InstanceRequest{
		Name: "web-1", ImageID: "ami-1", InstanceType: "t3.micro",
	})
	require.NoError(t, err)
	assert.Empty(t, api.runInput.BlockDeviceMappings)
	assert.Nil(t, api.runInput.SubnetId)
	assert.Nil(t, api.runInput.Placement)
	assert.Empty(t, api.attachInputs)
}

func TestClient_CreateInstance_RootVolumeUnsupported(t *testing.T) {
	t.Parallel()

	plan, err := launch.NewCompiler(nil).Compile(context.Background(),
		launch.NewConfig().AddVolumeDevice(launch.VolumeSource("vol-1"), 0, true, false), "")
	require.NoError(t, err)

	api := newFakeEC2()
	_, err = testClient(api).CreateInstance(context.Background(), launch.InstanceRequest{
		Name: "web-1", ImageID: "ami-1", InstanceType: "t3.micro", Plan: plan,
	})
	assert.ErrorIs(t, err, ErrUnsupportedDevice)
	assert.Nil(t, api.runInput, "nothing is launched")
}

func TestClient_CreateInstance_AttachFailure(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.attachErr = apiError("IncorrectState")
	plan, err := launch.NewCompiler(nil).Compile(context.Background(),
		launch.NewConfig().AddVolumeDevice(launch.VolumeSource("vol-9"), 0, false, false), "")
	require.NoError(t, err)

	_, err = testClient(api).CreateInstance(context.Background(), launch.InstanceRequest{
		Name: "web-1", ImageID: "ami-1", InstanceType: "t3.micro", Plan: plan,
	})
	require.ErrorIs(t, err, api.attachErr)
	var created *launch.InstanceCreatedError
	require.ErrorAs(t, err, &created)
	assert.Equal(t, "i-0abc", created.Payload.ID)
	assert.Equal(t, []string{"vol-9"}, created.Unattached)
	assert.Contains(t, err.Error(), "instance i-0abc was created but failed to attach volume vol-9")
}

func TestClient_LaunchWithAttachFailure(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.attachErr = apiError("IncorrectState")
	c := testClient(api)
	launcher := launch.NewLauncher(c.Name(), launch.NewCompiler(c, launch.WithSlotNaming(c.SlotNaming())), c,
		launch.WithOrphanCleanup(c))

	r, err := launcher.Launch(context.Background(), launch.Request{
		Name:         "web-1",
		Image:        "ami-1",
		InstanceType: "t3.micro",
		Zone:         "eu-west-1a",
		Config:       launch.NewConfig().AddVolumeDevice(launch.NoSource(), 10, false, true),
	})

	require.Error(t, err)
	require.NotNil(t, r, "the running instance is still returned")
	assert.Equal(t, "i-0abc", r.ID)
	assert.Equal(t, "web-1", r.Name())
	var perr *launch.PartialProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, perr.VolumeIDs)
	assert.Equal(t, []string{"vol-1"}, api.deleted, "the unattached blank volume is cleaned up")
}

func TestClient_CreateVolume_NeverAvailable(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	api.newVolumeState = types.VolumeStateError
	c := testClient(api)

	id, err := c.CreateVolume(context.Background(), launch.VolumeRequest{Name: "data", SizeGiB: 10, Zone: "eu-west-1a"})
	require.Error(t, err)
	assert.Equal(t, "vol-1", id)

	_, err = launch.NewCompiler(c, launch.WithSlotNaming(c.SlotNaming())).Compile(context.Background(),
		launch.NewConfig().AddVolumeDevice(launch.NoSource(), 10, false, true), "eu-west-1a")
	var perr *launch.PartialProvisioningError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"vol-2"}, perr.VolumeIDs)
}

func TestClient_CheckConfig(t *testing.T) {
	t.Parallel()

	ephemeral := func(n int) *launch.Config {
		cfg := launch.NewConfig()
		for range n {
			cfg.AddEphemeralDevice()
		}
		return cfg
	}

	tests := []struct {
		name string
		cfg  *launch.Config
		want error
	}{
		{"snapshot root", launch.NewConfig().AddVolumeDevice(launch.SnapshotSource("snap-1"), 0, true, true), nil},
		{"image root with size", launch.NewConfig().AddVolumeDevice(launch.ImageSource("ami-1"), 50, true, true), nil},
		{"blank data volume", launch.NewConfig().AddVolumeDevice(launch.NoSource(), 10, false, true), nil},
		{"blank root", launch.NewConfig().AddVolumeDevice(launch.NoSource(), 10, true, true), ErrUnsupportedDevice},
		{"existing volume root", launch.NewConfig().AddVolumeDevice(launch.VolumeSource("vol-1"), 0, true, false), ErrUnsupportedDevice},
		{"ephemeral at capacity", ephemeral(10), nil},
		{"ephemeral over capacity", ephemeral(11), launch.ErrTooManyDevices},
	}

	c := testClient(newFakeEC2())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := c.CheckConfig(tt.cfg)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			var verr *launch.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestClient_SetInstanceName(t *testing.T) {
	t.Parallel()

	api := newFakeEC2()
	require.NoError(t, testClient(api).SetInstanceName(context.Background(), "i-1", "web-1"))
	require.Len(t, api.tagInputs, 1)
	assert.Equal(t, []string{"i-1"}, api.tagInputs[0].Resources)
	assert.Equal(t, "web-1", aws.ToString(api.tagInputs[0].Tags[0].Value))
}

func TestEphemeralDevice(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/dev/sdz", ephemeralDevice(0))
	assert.Equal(t, "/dev/sdy", ephemeralDevice(1))
	assert.Equal(t, "/dev/sdq", ephemeralDevice(maxEphemeralDevices-1))
	assert.Greater(t, byte('q'), launch.AWSSlotNaming.Last)
}

package launch

// BlockDeviceSpec requests one block device.
// Volume=false requests an ephemeral (instance store) device, for which only
// Root is consulted.
type BlockDeviceSpec struct {
	Root              bool
	Volume            bool
	Source            Source
	SizeGiB           int // 0 means not requested
	DeleteOnTerminate bool
}

// Config is an ordered storage and network layout for a new instance.
type Config struct {
	BlockDevices []BlockDeviceSpec
	NetworkIDs   []string
}

// NewConfig returns an empty launch configuration.
func NewConfig() *Config {
	return &Config{}
}

// AddVolumeDevice appends a volume-backed device.
func (c *Config) AddVolumeDevice(src Source, sizeGiB int, root, deleteOnTerminate bool) *Config {
	c.BlockDevices = append(c.BlockDevices, BlockDeviceSpec{
		Root:              root,
		Volume:            true,
		Source:            src,
		SizeGiB:           sizeGiB,
		DeleteOnTerminate: deleteOnTerminate,
	})
	return c
}

// AddEphemeralDevice appends an ephemeral device.
func (c *Config) AddEphemeralDevice() *Config {
	c.BlockDevices = append(c.BlockDevices, BlockDeviceSpec{})
	return c
}

// AddNetwork appends a network attachment. Only the first one is used.
func (c *Config) AddNetwork(id string) *Config {
	c.NetworkIDs = append(c.NetworkIDs, id)
	return c
}

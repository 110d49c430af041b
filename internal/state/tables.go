package state

import (
	"fmt"
	"sort"
)

// Provider identifies a backing cloud provider.
type Provider string

const (
	ProviderAWS       Provider = "aws"
	ProviderOpenStack Provider = "openstack"
	ProviderHCloud    Provider = "hcloud"
)

// Providers lists every provider with a mapping table.
var Providers = []Provider{ProviderAWS, ProviderOpenStack, ProviderHCloud}

// ParseProvider converts a user supplied string into a Provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(s)
	if _, ok := tables[p]; !ok {
		return "", fmt.Errorf("unknown provider %q (want one of %v)", s, Providers)
	}
	return p, nil
}

// tables maps provider -> kind -> raw status -> canonical state.
// Raw statuses are matched exactly, in the casing each API emits them.
var tables = map[Provider]map[Kind]map[string]State{
	// https://docs.aws.amazon.com/AWSEC2/latest/APIReference/API_InstanceState.html
	ProviderAWS: {
		KindInstance: {
			"pending":       Pending,
			"running":       Running,
			"shutting-down": Configuring,
			"terminated":    Terminated,
			"stopping":      Configuring,
			"stopped":       Stopped,
		},
		KindVolume: {
			"creating":  Creating,
			"available": Available,
			"in-use":    InUse,
			"deleting":  Configuring,
			"deleted":   Unknown,
			"error":     Error,
		},
		KindSnapshot: {
			"pending":     Pending,
			"completed":   Available,
			"error":       Error,
			"recoverable": Unknown, // sitting in the recycle bin
			"recovering":  Configuring,
		},
		KindImage: {
			"pending":      Pending,
			"transient":    Pending,
			"available":    Available,
			"invalid":      Error,
			"deregistered": Error,
			"failed":       Error,
			"error":        Error,
			"disabled":     Error,
		},
	},

	// nova: https://docs.openstack.org/api-guide/compute/server_concepts.html
	// cinder: https://docs.openstack.org/api-ref/block-storage/v3/
	ProviderOpenStack: {
		KindInstance: {
			"ACTIVE":            Running,
			"BUILD":             Pending,
			"DELETED":           Terminated,
			"ERROR":             Error,
			"HARD_REBOOT":       Rebooting,
			"PASSWORD":          Pending,
			"PAUSED":            Stopped,
			"REBOOT":            Rebooting,
			"REBUILD":           Configuring,
			"RESCUE":            Configuring,
			"RESIZE":            Configuring,
			"REVERT_RESIZE":     Configuring,
			"SHELVED":           Stopped,
			"SHELVED_OFFLOADED": Stopped,
			"SOFT_DELETED":      Stopped,
			"STOPPED":           Stopped,
			"SUSPENDED":         Stopped,
			"SHUTOFF":           Stopped,
			"UNKNOWN":           Unknown,
			"VERIFY_RESIZE":     Configuring,
		},
		KindVolume: {
			"creating":          Creating,
			"downloading":       Creating,
			"available":         Available,
			"reserved":          InUse,
			"attaching":         Configuring,
			"detaching":         Configuring,
			"in-use":            InUse,
			"maintenance":       Configuring,
			"deleting":          Configuring,
			"awaiting-transfer": Configuring,
			"error":             Error,
			"error_deleting":    Error,
			"backing-up":        Configuring,
			"restoring-backup":  Configuring,
			"error_backing-up":  Error,
			"error_restoring":   Error,
			"error_extending":   Error,
			"extending":         Configuring,
			"uploading":         Configuring,
			"retyping":          Configuring,
		},
		KindSnapshot: {
			"creating":       Pending,
			"available":      Available,
			"backing-up":     Configuring,
			"deleting":       Configuring,
			"restoring":      Configuring,
			"unmanaging":     Configuring,
			"error":          Error,
			"error_deleting": Error,
		},
		KindImage: {
			"QUEUED":         Pending,
			"SAVING":         Pending,
			"ACTIVE":         Available,
			"KILLED":         Error,
			"DELETED":        Error,
			"PENDING_DELETE": Error,
			"ERROR":          Error,
			"UNKNOWN":        Unknown,
		},
	},

	// https://docs.hetzner.cloud/#servers
	ProviderHCloud: {
		KindInstance: {
			"initializing": Pending,
			"starting":     Pending,
			"running":      Running,
			"stopping":     Configuring,
			"off":          Stopped,
			"deleting":     Configuring,
			"rebuilding":   Configuring,
			"migrating":    Configuring,
			"unknown":      Unknown,
		},
		KindVolume: {
			"creating":  Creating,
			"available": Available,
		},
		// Hetzner snapshots are images of type "snapshot".
		KindSnapshot: {
			"creating":    Pending,
			"available":   Available,
			"unavailable": Error,
		},
		KindImage: {
			"creating":    Pending,
			"available":   Available,
			"unavailable": Error,
		},
	},
}

// Normalize maps a raw provider status to its canonical state.
// It never fails: unknown providers, kinds or statuses yield Unknown.
func Normalize(p Provider, k Kind, raw string) State {
	if s, ok := tables[p][k][raw]; ok {
		return s
	}
	return Unknown
}

// Table returns a copy of the mapping table for a provider and kind.
// The result is nil when the provider or kind has no table.
func Table(p Provider, k Kind) map[string]State {
	src, ok := tables[p][k]
	if !ok {
		return nil
	}
	out := make(map[string]State, len(src))
	for raw, s := range src {
		out[raw] = s
	}
	return out
}

// RawStatuses returns the documented raw statuses for a provider and kind in sorted order.
func RawStatuses(p Provider, k Kind) []string {
	src := tables[p][k]
	out := make([]string, 0, len(src))
	for raw := range src {
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

package naming

import (
	"fmt"
	"path"
	"strings"
)

// Volume returns the name of a blank volume provisioned for an instance slot.
// The slot's directory prefix is dropped: "/dev/sdb" becomes "sdb".
func Volume(instance, slot string) string {
	base := sanitize(path.Base(slot))
	if instance == "" {
		return base
	}
	return fmt.Sprintf("%s-%s", instance, base)
}

// ManagedLabel is the label key stamped on resources created by unicloud.
const ManagedLabel = "unicloud/managed-by"

// ManagedLabels returns the labels stamped on resources created for an instance.
func ManagedLabels(instance string) map[string]string {
	labels := map[string]string{ManagedLabel: "unicloud"}
	if instance != "" {
		labels["unicloud/instance"] = sanitize(instance)
	}
	return labels
}

// sanitize lowercases s and replaces characters outside [a-z0-9-] with '-'.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

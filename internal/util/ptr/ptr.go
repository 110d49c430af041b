// Package ptr provides helper functions for creating pointers to primitive types.
package ptr

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }

// String returns a pointer to the given string, or nil when it is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Int32 returns a pointer to the given int32, or nil when it is zero.
func Int32(i int32) *int32 {
	if i == 0 {
		return nil
	}
	return &i
}

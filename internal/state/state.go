package state

import "fmt"

// State is a provider-independent lifecycle state.
type State string

const (
	Pending     State = "pending"
	Creating    State = "creating"
	Configuring State = "configuring"
	Rebooting   State = "rebooting"
	Running     State = "running"
	Stopped     State = "stopped"
	Terminated  State = "terminated"
	Available   State = "available"
	InUse       State = "in-use"
	Error       State = "error"
	Unknown     State = "unknown"
)

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// Kind identifies the type of a stateful cloud resource.
type Kind string

const (
	KindInstance Kind = "instance"
	KindVolume   Kind = "volume"
	KindSnapshot Kind = "snapshot"
	KindImage    Kind = "image"
)

// Kinds lists every supported resource kind.
var Kinds = []Kind{KindInstance, KindVolume, KindSnapshot, KindImage}

var kindStates = map[Kind][]State{
	KindInstance: {Pending, Configuring, Rebooting, Running, Stopped, Terminated, Error, Unknown},
	KindVolume:   {Creating, Configuring, Available, InUse, Error, Unknown},
	KindSnapshot: {Pending, Configuring, Available, Error, Unknown},
	KindImage:    {Pending, Available, Error, Unknown},
}

// States returns the legal canonical states for the kind.
func (k Kind) States() []State {
	states := kindStates[k]
	out := make([]State, len(states))
	copy(out, states)
	return out
}

// Valid reports whether s is a legal state for the kind.
func (k Kind) Valid(s State) bool {
	for _, legal := range kindStates[k] {
		if legal == s {
			return true
		}
	}
	return false
}

// ParseKind converts a user supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindStates[k]; !ok {
		return "", fmt.Errorf("unknown resource kind %q (want one of %v)", s, Kinds)
	}
	return k, nil
}

// ParseState converts a string into a State legal for the kind.
func ParseState(k Kind, s string) (State, error) {
	st := State(s)
	if !k.Valid(st) {
		return "", fmt.Errorf("state %q is not valid for %s (want one of %v)", s, k, k.States())
	}
	return st, nil
}

package handlers

import (
	"fmt"
	"io"

	"github.com/imamik/unicloud/internal/state"
)

type normalizeResult struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	State    string `json:"state"`
}

// Normalize prints the canonical state of raw, or the whole mapping table
// for the provider and kind when hasRaw is false.
func Normalize(out io.Writer, provider, kind, raw string, hasRaw, jsonOut bool) error {
	out = writer(out)

	p, err := state.ParseProvider(provider)
	if err != nil {
		return err
	}
	k, err := state.ParseKind(kind)
	if err != nil {
		return err
	}

	statuses := []string{raw}
	if !hasRaw {
		statuses = state.RawStatuses(p, k)
	}

	results := make([]normalizeResult, len(statuses))
	for i, s := range statuses {
		results[i] = normalizeResult{
			Provider: string(p),
			Kind:     string(k),
			Status:   s,
			State:    string(state.Normalize(p, k, s)),
		}
	}

	if jsonOut {
		if hasRaw {
			return writeJSON(out, results[0])
		}
		return writeJSON(out, results)
	}

	styled := isTerminal()
	if hasRaw {
		fmt.Fprintln(out, styleState(state.State(results[0].State), styled))
		return nil
	}
	width := 0
	for _, s := range statuses {
		width = max(width, len(s))
	}
	for _, r := range results {
		fmt.Fprintf(out, "%-*s  %s\n", width, r.Status, styleState(state.State(r.State), styled))
	}
	return nil
}

func styleState(s state.State, styled bool) string {
	if !styled {
		return string(s)
	}
	return stateStyle(s).Render(string(s))
}

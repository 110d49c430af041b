package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imamik/unicloud/internal/resource"
	"github.com/imamik/unicloud/internal/state"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// stateStyle picks a color by how settled a state is.
func stateStyle(s state.State) lipgloss.Style {
	switch s {
	case state.Running, state.Available, state.InUse:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case state.Error, state.Terminated:
		return lipgloss.NewStyle().Foreground(colorRed)
	case state.Pending, state.Creating, state.Configuring, state.Rebooting:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return dimStyle
	}
}

// resourceView is the printed form of a tracked resource.
type resourceView struct {
	Provider   string            `json:"provider"`
	Kind       string            `json:"kind"`
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Zone       string            `json:"zone,omitempty"`
	Status     string            `json:"status,omitempty"`
	State      string            `json:"state"`
	Exists     bool              `json:"exists"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func newResourceView(r *resource.Tracked) resourceView {
	p := r.Payload()
	return resourceView{
		Provider:   string(r.Provider),
		Kind:       string(r.Kind),
		ID:         r.ID,
		Name:       p.Name,
		Zone:       p.Zone,
		Status:     p.Status,
		State:      string(r.State()),
		Exists:     r.Exists(),
		Attributes: p.Attributes,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// renderResources prints one row per resource. Colors are applied only
// when styled is set.
func renderResources(views []resourceView, styled bool) string {
	headers := []string{"KIND", "ID", "NAME", "ZONE", "STATUS", "STATE"}
	rows := make([][]string, len(views))
	for i, v := range views {
		name, status := v.Name, v.Status
		if !v.Exists {
			status = "(not found)"
		}
		rows[i] = []string{v.Kind, v.ID, orDash(name), orDash(v.Zone), orDash(status), v.State}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	writeRow(&b, headers, widths, func(_ int, s string) string {
		if styled {
			return headerStyle.Render(s)
		}
		return s
	})
	for i, row := range rows {
		st := state.State(views[i].State)
		writeRow(&b, row, widths, func(col int, s string) string {
			if !styled {
				return s
			}
			if col == len(headers)-1 {
				return stateStyle(st).Render(s)
			}
			if strings.TrimSpace(s) == "-" {
				return dimStyle.Render(s)
			}
			return s
		})
	}
	return b.String()
}

// writeRow pads before styling so escape codes do not skew the columns.
func writeRow(b *strings.Builder, cells []string, widths []int, style func(col int, s string) string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		padded := cell
		if i < len(cells)-1 {
			padded = fmt.Sprintf("%-*s", widths[i], cell)
		}
		b.WriteString(style(i, padded))
	}
	b.WriteString("\n")
}

// renderAttributes lists a resource's attributes in key order.
func renderAttributes(attrs map[string]string, styled bool) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		key := fmt.Sprintf("  %s:", k)
		if styled {
			key = dimStyle.Render(key)
		}
		fmt.Fprintf(&b, "%s %s\n", key, attrs[k])
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

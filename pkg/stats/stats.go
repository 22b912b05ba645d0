// Package stats collects per-request execution profiles. The Memory collector
// renders a human-readable table for request logs; the Prometheus collector
// feeds action timings into a metrics registry for scraping.
package stats

import (
	"fmt"
	"strings"
	"time"
)

// entry is one profiled span. Spans close in LIFO order but are reported in
// the order they were opened, so nested calls read top-down.
type entry struct {
	label string
	begin time.Time
	end   time.Time
}

// Memory profiles one request in memory. It is bound to a single request
// context and therefore needs no locking.
type Memory struct {
	now     func() time.Time
	entries []entry
}

// NewMemory creates an empty per-request profile.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// ProfileStart opens a span for label.
func (m *Memory) ProfileStart(label string) {
	m.entries = append(m.entries, entry{label: label, begin: m.now()})
}

// ProfileEnd closes the most recent open span for label. Unmatched labels are
// ignored.
func (m *Memory) ProfileEnd(label string) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].label == label && m.entries[i].end.IsZero() {
			m.entries[i].end = m.now()
			return
		}
	}
}

// Report renders the profile as an aligned two-column table. Returns "" when
// nothing was profiled.
func (m *Memory) Report() string {
	if len(m.entries) == 0 {
		return ""
	}

	width := len("Action")
	for _, e := range m.entries {
		if len(e.label) > width {
			width = len(e.label)
		}
	}

	var sb strings.Builder
	line := "+" + strings.Repeat("-", width+2) + "+-----------+"
	fmt.Fprintf(&sb, "%s\n| %-*s | Time      |\n%s\n", line, width, "Action", line)
	for _, e := range m.entries {
		end := e.end
		if end.IsZero() {
			end = m.now()
		}
		fmt.Fprintf(&sb, "| %-*s | %.06fs |\n", width, e.label, end.Sub(e.begin).Seconds())
	}
	sb.WriteString(line)
	return sb.String()
}

// Package journal resolves calendar dates to daily-note files. The central
// idea is the logical date: a configurable end-of-day time shifts the
// boundary, so 01:30 with a 04:00 cutoff still belongs to yesterday's page.
package journal

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// DayEnd is a time-of-day boundary. Instants strictly before it belong to
// the previous logical date.
type DayEnd struct {
	Hour   int
	Minute int
}

// DefaultDayEnd is the boundary used when no valid value is configured.
var DefaultDayEnd = DayEnd{Hour: 4}

// ParseDayEnd parses an "HH:mm" clock value. Callers that receive an error
// are expected to fall back to DefaultDayEnd rather than abort.
func ParseDayEnd(s string) (DayEnd, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return DefaultDayEnd, fmt.Errorf("journal: parse day end %q: %w", s, err)
	}
	return DayEnd{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (d DayEnd) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// before reports whether the time-of-day component of t falls before the
// boundary. Only hours and minutes are compared.
func (d DayEnd) before(t time.Time) bool {
	if t.Hour() != d.Hour {
		return t.Hour() < d.Hour
	}
	return t.Minute() < d.Minute
}

// Settings mirrors the host's journaling configuration.
type Settings struct {
	Enabled        bool
	FilenameFormat string
	Folder         string
	DayEnd         DayEnd
}

// ResolvedDay pairs a logical date with its vault location. Path is empty
// when journaling is disabled; callers treat that as "no file for this
// date", not as an error.
type ResolvedDay struct {
	Date    time.Time
	Path    string
	IsToday bool
}

// Resolver maps offsets from the logical today to journal file paths.
type Resolver struct {
	enabled bool
	layout  string
	folder  string
	dayEnd  DayEnd
}

// NewResolver builds a Resolver from journaling settings. The filename
// format uses date tokens (YYYY, MM, DD, ...); see Layout.
func NewResolver(s Settings) *Resolver {
	return &Resolver{
		enabled: s.Enabled,
		layout:  Layout(s.FilenameFormat),
		folder:  strings.Trim(s.Folder, "/"),
		dayEnd:  s.DayEnd,
	}
}

// Enabled reports whether a journaling feature is active at all.
func (r *Resolver) Enabled() bool { return r.enabled }

// DayEnd returns the configured boundary.
func (r *Resolver) DayEnd() DayEnd { return r.dayEnd }

// LogicalDate returns the journal date in effect at now: the calendar date,
// shifted one day back while the clock is still before the day-end boundary.
func (r *Resolver) LogicalDate(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if r.dayEnd.before(now) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// DayAt resolves the day offset days before the logical today. Offset 0 is
// today itself.
func (r *Resolver) DayAt(now time.Time, offset int) ResolvedDay {
	date := r.LogicalDate(now).AddDate(0, 0, -offset)
	return ResolvedDay{
		Date:    date,
		Path:    r.PathFor(date),
		IsToday: offset == 0,
	}
}

// PathFor returns the vault path of the journal file for date, or "" when
// journaling is disabled.
func (r *Resolver) PathFor(date time.Time) string {
	if !r.enabled {
		return ""
	}
	name := date.Format(r.layout) + ".md"
	if r.folder == "" {
		return name
	}
	return path.Join(r.folder, name)
}

// NextBoundary returns the next instant at which the logical date rolls
// over. It is always strictly after now.
func (r *Resolver) NextBoundary(now time.Time) time.Time {
	b := time.Date(now.Year(), now.Month(), now.Day(), r.dayEnd.Hour, r.dayEnd.Minute, 0, 0, now.Location())
	if !b.After(now) {
		b = b.AddDate(0, 0, 1)
	}
	return b
}

// DaysBetween returns the number of whole calendar days from one date to
// another, ignoring the time-of-day and time-zone transitions.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

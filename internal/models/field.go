// Package models defines the domain types for Dagaz.
package models

import (
	"fmt"
	"strings"
	"time"
)

// FieldKind identifies how a field's value is computed from journal content.
type FieldKind string

const (
	// KindField extracts the first inline "name:: value" annotation.
	KindField FieldKind = "field"
	// KindCompleted counts checked-off task lines.
	KindCompleted FieldKind = "completed"
	// KindUncompleted counts open task lines.
	KindUncompleted FieldKind = "uncompleted"
	// KindWords counts whitespace-delimited tokens.
	KindWords FieldKind = "words"
	// KindLineBreak is a layout-only spacer; it never produces a value.
	KindLineBreak FieldKind = "linebreak"
	// KindScript evaluates a configured script against the page record.
	KindScript FieldKind = "script"
)

// AllKinds returns the list of supported field kinds.
func AllKinds() []FieldKind {
	return []FieldKind{
		KindField,
		KindCompleted,
		KindUncompleted,
		KindWords,
		KindLineBreak,
		KindScript,
	}
}

// ParseKind converts a string to a FieldKind or returns an error for
// unknown values. Every dispatch site relies on this being exhaustive.
func ParseKind(raw string) (FieldKind, error) {
	k := FieldKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllKinds() {
		if candidate == k {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("models: unknown field kind %q", raw)
}

// FieldSpec is one configured metric definition. The list of specs is owned
// by the long-lived configuration; specs are read-only during a rebuild.
type FieldSpec struct {
	Kind        FieldKind `yaml:"kind" json:"kind"`
	DisplayName string    `yaml:"name" json:"name"`
	// TagName names the inline annotation searched by KindField.
	TagName string `yaml:"tag,omitempty" json:"tag,omitempty"`
	// CustomOverride, when set, replaces the aggregated value verbatim in
	// every period column.
	CustomOverride string `yaml:"override,omitempty" json:"override,omitempty"`
	// Aggregate controls participation in period aggregation. Unset means true.
	Aggregate *bool  `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`
	Script    string `yaml:"script,omitempty" json:"script,omitempty"`
}

// InAggregates reports whether the field participates in period aggregation.
// Line breaks never do.
func (f FieldSpec) InAggregates() bool {
	if f.Kind == KindLineBreak {
		return false
	}
	return f.Aggregate == nil || *f.Aggregate
}

// PeriodUnit is the calendar unit of a rolling period.
type PeriodUnit string

const (
	UnitDays   PeriodUnit = "days"
	UnitWeeks  PeriodUnit = "weeks"
	UnitMonths PeriodUnit = "months"
	UnitYears  PeriodUnit = "years"
)

// AllUnits returns the list of supported period units.
func AllUnits() []PeriodUnit {
	return []PeriodUnit{UnitDays, UnitWeeks, UnitMonths, UnitYears}
}

// ParseUnit converts a string to a PeriodUnit or returns an error for
// unknown values.
func ParseUnit(raw string) (PeriodUnit, error) {
	u := PeriodUnit(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllUnits() {
		if candidate == u {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("models: unknown period unit %q", raw)
}

// Back returns t shifted magnitude units into the past using calendar
// arithmetic (a month back from March 31 lands in early March, the same
// way time.AddDate normalizes).
func (u PeriodUnit) Back(t time.Time, magnitude int) time.Time {
	switch u {
	case UnitWeeks:
		return t.AddDate(0, 0, -7*magnitude)
	case UnitMonths:
		return t.AddDate(0, -magnitude, 0)
	case UnitYears:
		return t.AddDate(-magnitude, 0, 0)
	default:
		return t.AddDate(0, 0, -magnitude)
	}
}

// PeriodSpec is one configured rolling window ending at (but excluding)
// the logical today.
type PeriodSpec struct {
	Magnitude int        `yaml:"magnitude" json:"magnitude"`
	Unit      PeriodUnit `yaml:"unit" json:"unit"`
	Label     string     `yaml:"label" json:"label"`
	// ShowDate appends the attributed date to the aggregated value.
	ShowDate bool `yaml:"show_date,omitempty" json:"show_date,omitempty"`
}

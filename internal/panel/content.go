// Package panel assembles daily-journal statistics into displayable
// content and publishes snapshots of it to subscribers.
package panel

// Row is one line of a column. A spacer row has no label or value and
// renders as an empty line.
type Row struct {
	Label    string
	Value    string
	DateText string
	Spacer   bool
}

// Column is one vertical section of the panel: a header plus rows.
type Column struct {
	Header string
	Rows   []Row
}

func (col Column) equal(o Column) bool {
	if col.Header != o.Header || len(col.Rows) != len(o.Rows) {
		return false
	}
	for i := range col.Rows {
		if col.Rows[i] != o.Rows[i] {
			return false
		}
	}
	return true
}

// Content is one fully assembled panel snapshot: day columns most recent
// first, then period columns in configured order.
type Content struct {
	Columns []Column
}

// Equal reports whether two snapshots would render identically. The hub
// uses it to suppress redundant publishes.
func (c Content) Equal(o Content) bool {
	if len(c.Columns) != len(o.Columns) {
		return false
	}
	for i := range c.Columns {
		if !c.Columns[i].equal(o.Columns[i]) {
			return false
		}
	}
	return true
}

const (
	// fallbackMessage replaces the whole panel when assembly fails.
	fallbackMessage = "Daily stats could not be generated"
	// disabledMessage is shown when no journaling feature is active.
	disabledMessage = "Daily notes are turned off"
)

// Fallback returns the error-boundary content.
func Fallback() Content {
	return Content{Columns: []Column{{Rows: []Row{{Value: fallbackMessage}}}}}
}

func disabledContent() Content {
	return Content{Columns: []Column{{Rows: []Row{{Value: disabledMessage}}}}}
}

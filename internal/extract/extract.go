// Package extract computes per-day metrics from raw journal text: task
// counts, word counts, inline field lookups and script results.
package extract

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/scripting"
)

var (
	// Task lines must carry non-empty text after the checkbox. Leading
	// indentation keeps nested list items countable.
	completedRe   = regexp.MustCompile(`(?m)^[ \t]*- \[x\] .*\S`)
	uncompletedRe = regexp.MustCompile(`(?m)^[ \t]*- \[ \] .*\S`)

	// inlineFieldRe captures "name:: value" annotations at line starts.
	inlineFieldRe = regexp.MustCompile(`(?m)^[ \t]*([A-Za-z0-9][\w ./-]*?)[ \t]*::[ \t]*(.*)$`)

	// Emphasis markers nest, so the longest marker is resolved first.
	boldItalicRe = regexp.MustCompile(`\*\*\*(.+?)\*\*\*`)
	boldRe       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe     = regexp.MustCompile(`\*(.+?)\*`)
)

// Value is the outcome of applying one field to one day's content. Display
// is what the panel shows; Num is set when Display parses as a finite
// number, which is what lets the value participate in period aggregation.
type Value struct {
	Display string
	Num     float64
	Numeric bool
	NoData  bool
}

func numberValue(n int) Value {
	return Value{Display: strconv.Itoa(n), Num: float64(n), Numeric: true}
}

func textValue(s string) Value {
	v := Value{Display: s}
	if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		v.Num = n
		v.Numeric = true
	}
	return v
}

// CountCompleted returns the number of checked-off task lines.
func CountCompleted(content string) int {
	return len(completedRe.FindAllString(content, -1))
}

// CountUncompleted returns the number of open task lines.
func CountUncompleted(content string) int {
	return len(uncompletedRe.FindAllString(content, -1))
}

// CountWords returns the number of whitespace-delimited tokens.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// Field returns the value of the first "tag:: value" annotation, raw and
// untransformed, and whether one was found.
func Field(content, tag string) (string, bool) {
	re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(tag) + `[ \t]*::[ \t]*(.*)$`)
	m := re.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Title returns the first H1 heading, or "" when the page has none.
func Title(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// InlineFields returns every "name:: value" annotation in content. The
// first occurrence of a name wins.
func InlineFields(content string) map[string]string {
	out := map[string]string{}
	for _, m := range inlineFieldRe.FindAllStringSubmatch(content, -1) {
		if _, seen := out[m[1]]; seen {
			continue
		}
		out[m[1]] = strings.TrimSpace(m[2])
	}
	return out
}

// renderEmphasis rewrites Markdown emphasis into display markup. The
// three-star form must be consumed before the shorter ones.
func renderEmphasis(s string) string {
	s = boldItalicRe.ReplaceAllString(s, "<b><i>$1</i></b>")
	s = boldRe.ReplaceAllString(s, "<b>$1</b>")
	s = italicRe.ReplaceAllString(s, "<i>$1</i>")
	return s
}

// Extractor computes configured field values from raw journal content.
type Extractor struct {
	scripts scripting.Engine // nil when no script engine is wired
}

// New creates an Extractor. scripts may be nil; script fields then resolve
// to an error value instead of evaluating.
func New(scripts scripting.Engine) *Extractor {
	return &Extractor{scripts: scripts}
}

// Extract computes the value of one field against one day's content. Script
// failures surface as error-message values rather than errors; an error
// return means the field itself is unusable.
func (e *Extractor) Extract(ctx context.Context, content string, field models.FieldSpec, path string) (Value, error) {
	switch field.Kind {
	case models.KindCompleted:
		return numberValue(CountCompleted(content)), nil
	case models.KindUncompleted:
		return numberValue(CountUncompleted(content)), nil
	case models.KindWords:
		return numberValue(CountWords(content)), nil
	case models.KindField:
		raw, ok := Field(content, field.TagName)
		if !ok {
			return Value{NoData: true}, nil
		}
		return textValue(renderEmphasis(raw)), nil
	case models.KindScript:
		return e.evalScript(ctx, field.Script, path), nil
	case models.KindLineBreak:
		return Value{}, fmt.Errorf("extract: line break fields produce no value")
	default:
		return Value{}, fmt.Errorf("extract: unhandled field kind %q", field.Kind)
	}
}

func (e *Extractor) evalScript(ctx context.Context, source, path string) Value {
	if e.scripts == nil {
		return Value{Display: "Error: scripting is not available"}
	}
	if err := e.scripts.WaitReady(ctx); err != nil {
		return Value{Display: "Error: " + err.Error()}
	}
	out, err := e.scripts.Evaluate(ctx, source, path)
	if err != nil {
		return Value{Display: "Error: " + err.Error()}
	}
	if strings.TrimSpace(out) == "" {
		return Value{NoData: true}
	}
	return textValue(out)
}

package panel

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dagaz/internal/extract"
	"github.com/starford/dagaz/internal/fieldindex"
	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/scripting"
	"github.com/starford/dagaz/internal/testutil"
	"github.com/starford/dagaz/internal/vault"
)

// fixedNow pins the clock to a Sunday noon, well past the 04:00 boundary:
// the logical today is 2024-03-10.
func fixedNow() time.Time {
	return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testOpts() Options {
	return Options{
		Fields: []models.FieldSpec{
			{Kind: models.KindCompleted, DisplayName: "Done"},
			{Kind: models.KindWords, DisplayName: "Words"},
		},
		DaysToShow:    3,
		NoDataMessage: "N/A",
	}
}

type fixture struct {
	dir   string
	store vault.Provider
	res   *journal.Resolver
	eng   *Engine
}

func newFixture(t *testing.T, opts Options, now func() time.Time) *fixture {
	t.Helper()
	dir, store := testutil.TestVault(t)
	res := journal.NewResolver(journal.Settings{
		Enabled:        true,
		FilenameFormat: "YYYY-MM-DD",
		Folder:         "journal",
		DayEnd:         journal.DayEnd{Hour: 4},
	})
	eng := NewEngine(store, res, extract.New(nil), opts, quietLogger())
	if now != nil {
		eng.Now = now
	}
	return &fixture{dir: dir, store: store, res: res, eng: eng}
}

func (f *fixture) writeDay(t *testing.T, date time.Time, content string) {
	t.Helper()
	rel := f.res.PathFor(date)
	abs := filepath.Join(f.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAssembleDayColumns(t *testing.T) {
	f := newFixture(t, testOpts(), fixedNow)
	f.writeDay(t, day(2024, 3, 10), "- [x] a\n- [x] b\nhello")
	f.writeDay(t, day(2024, 3, 9), "- [x] c\n")
	f.writeDay(t, day(2024, 3, 8), "x\n")

	got := f.eng.Rebuild(context.Background())

	want := Content{Columns: []Column{
		{Header: "Today", Rows: []Row{
			{Label: "Done", Value: "2"},
			{Label: "Words", Value: "7"},
		}},
		{Header: "Yest", Rows: []Row{
			{Value: "1"},
			{Value: "3"},
		}},
		{Header: "Mar 8", Rows: []Row{
			{Value: "0"},
			{Value: "1"},
		}},
	}}
	if !got.Equal(want) {
		t.Errorf("content = %+v\nwant %+v", got, want)
	}
}

func TestAssembleOmitsMissingDays(t *testing.T) {
	f := newFixture(t, testOpts(), fixedNow)
	f.writeDay(t, day(2024, 3, 10), "- [x] a\n")
	f.writeDay(t, day(2024, 3, 8), "- [x] b\n- [x] c\n")

	got := f.eng.Rebuild(context.Background())

	if len(got.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(got.Columns))
	}
	if got.Columns[0].Header != "Today" || got.Columns[1].Header != "Mar 8" {
		t.Errorf("headers = %q, %q", got.Columns[0].Header, got.Columns[1].Header)
	}
}

func TestAssembleLabelsOnFirstEmittedColumn(t *testing.T) {
	// Today has no file, so yesterday becomes the first emitted column and
	// carries the labels.
	f := newFixture(t, testOpts(), fixedNow)
	f.writeDay(t, day(2024, 3, 9), "- [x] a\n")

	got := f.eng.Rebuild(context.Background())

	if len(got.Columns) != 1 {
		t.Fatalf("columns = %d, want 1", len(got.Columns))
	}
	col := got.Columns[0]
	if col.Header != "Yest" {
		t.Errorf("header = %q, want Yest", col.Header)
	}
	if col.Rows[0].Label != "Done" {
		t.Errorf("label = %q, want Done", col.Rows[0].Label)
	}
}

func TestAssembleShowFieldNamesEverywhere(t *testing.T) {
	opts := testOpts()
	opts.ShowFieldNames = true
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "a")
	f.writeDay(t, day(2024, 3, 9), "b")

	got := f.eng.Rebuild(context.Background())

	for i, col := range got.Columns {
		if col.Rows[0].Label != "Done" {
			t.Errorf("column %d label = %q, want Done", i, col.Rows[0].Label)
		}
	}
}

func TestAssembleSpacerRows(t *testing.T) {
	opts := testOpts()
	opts.Fields = []models.FieldSpec{
		{Kind: models.KindCompleted, DisplayName: "Done"},
		{Kind: models.KindLineBreak},
		{Kind: models.KindWords, DisplayName: "Words"},
	}
	opts.Periods = []models.PeriodSpec{{Magnitude: 7, Unit: models.UnitDays, Label: "7d"}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "- [x] a\n")

	got := f.eng.Rebuild(context.Background())

	if len(got.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(got.Columns))
	}
	if !got.Columns[0].Rows[1].Spacer {
		t.Error("day column row 1 should be a spacer")
	}
	// The period column keeps the spacer but has no aggregate rows, since
	// yesterday and earlier have no files.
	if len(got.Columns[1].Rows) != 1 || !got.Columns[1].Rows[0].Spacer {
		t.Errorf("period rows = %+v, want a single spacer", got.Columns[1].Rows)
	}
}

func TestAssembleNoDataValue(t *testing.T) {
	opts := testOpts()
	opts.Fields = []models.FieldSpec{{Kind: models.KindField, TagName: "mood", DisplayName: "Mood"}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "no fields here")

	got := f.eng.Rebuild(context.Background())

	if got.Columns[0].Rows[0].Value != "N/A" {
		t.Errorf("value = %q, want N/A", got.Columns[0].Rows[0].Value)
	}
}

func TestAssemblePeriodColumn(t *testing.T) {
	opts := testOpts()
	opts.Fields = []models.FieldSpec{{Kind: models.KindField, TagName: "pushups", DisplayName: "Pushups"}}
	opts.Periods = []models.PeriodSpec{{Magnitude: 3, Unit: models.UnitDays, Label: "3d best", ShowDate: true}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "pushups:: 99")
	f.writeDay(t, day(2024, 3, 9), "pushups:: 2")
	f.writeDay(t, day(2024, 3, 8), "pushups:: 5")
	f.writeDay(t, day(2024, 3, 7), "pushups:: 5")

	got := f.eng.Rebuild(context.Background())

	last := got.Columns[len(got.Columns)-1]
	if last.Header != "3d best" {
		t.Fatalf("period header = %q", last.Header)
	}
	want := Row{Label: "Pushups", Value: "5", DateText: "Mar 8"}
	if len(last.Rows) != 1 || last.Rows[0] != want {
		t.Errorf("period rows = %+v, want [%+v]", last.Rows, want)
	}
}

func TestAssembleOverrideReplacesAggregate(t *testing.T) {
	opts := testOpts()
	opts.Fields = []models.FieldSpec{{
		Kind:           models.KindCompleted,
		DisplayName:    "Done",
		CustomOverride: "goal: 10/day",
	}}
	opts.Periods = []models.PeriodSpec{{Magnitude: 7, Unit: models.UnitDays, Label: "Week"}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "- [x] a\n")

	got := f.eng.Rebuild(context.Background())

	period := got.Columns[len(got.Columns)-1]
	if len(period.Rows) != 1 || period.Rows[0].Value != "goal: 10/day" {
		t.Errorf("period rows = %+v, want the override verbatim", period.Rows)
	}
	// Day columns keep the real extraction.
	if got.Columns[0].Rows[0].Value != "1" {
		t.Errorf("day value = %q, want 1", got.Columns[0].Rows[0].Value)
	}
}

func TestAssembleExcludedFieldSkippedEvenWithOverride(t *testing.T) {
	no := false
	opts := testOpts()
	opts.Fields = []models.FieldSpec{{
		Kind:           models.KindCompleted,
		DisplayName:    "Done",
		CustomOverride: "never shown",
		Aggregate:      &no,
	}}
	opts.Periods = []models.PeriodSpec{{Magnitude: 7, Unit: models.UnitDays, Label: "Week"}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "- [x] a\n")

	got := f.eng.Rebuild(context.Background())

	period := got.Columns[len(got.Columns)-1]
	if len(period.Rows) != 0 {
		t.Errorf("period rows = %+v, want none", period.Rows)
	}
}

func TestAssembleScriptFieldOverIndex(t *testing.T) {
	// End to end: the day file is indexed, then a script field reads the
	// indexed record back through the engine.
	opts := testOpts()
	opts.Fields = []models.FieldSpec{{
		Kind:        models.KindScript,
		DisplayName: "Score",
		Script:      `current ? String(current.completed * 10) : "unindexed"`,
	}}
	f := newFixture(t, opts, fixedNow)

	db := testutil.TestDB(t)
	runner := scripting.NewRunner(db)
	runner.SetReady()
	f.eng = NewEngine(f.store, f.res, extract.New(runner), opts, quietLogger())
	f.eng.Now = fixedNow

	f.writeDay(t, day(2024, 3, 10), "- [x] a\n- [x] b\n")
	if err := fieldindex.Sync(db, f.store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got := f.eng.Rebuild(context.Background())

	if len(got.Columns) != 1 {
		t.Fatalf("columns = %d, want 1", len(got.Columns))
	}
	if v := got.Columns[0].Rows[0].Value; v != "20" {
		t.Errorf("script value = %q, want 20", v)
	}
}

func TestRebuildIdempotent(t *testing.T) {
	opts := testOpts()
	opts.Periods = []models.PeriodSpec{{Magnitude: 30, Unit: models.UnitDays, Label: "30d"}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "- [x] a\nmood:: fine\n")
	f.writeDay(t, day(2024, 3, 9), "- [x] b\n- [x] c\n")

	first := f.eng.Rebuild(context.Background())
	second := f.eng.Rebuild(context.Background())

	if !first.Equal(second) {
		t.Errorf("rebuilds differ:\n%+v\n%+v", first, second)
	}
}

func TestRebuildJournalingDisabled(t *testing.T) {
	f := newFixture(t, testOpts(), fixedNow)
	f.eng.Reconfigure(journal.NewResolver(journal.Settings{Enabled: false}), testOpts())

	got := f.eng.Rebuild(context.Background())

	if len(got.Columns) != 1 || len(got.Columns[0].Rows) != 1 {
		t.Fatalf("content = %+v, want a single message", got)
	}
	if got.Columns[0].Rows[0].Value != disabledMessage {
		t.Errorf("value = %q, want %q", got.Columns[0].Rows[0].Value, disabledMessage)
	}
}

func TestRebuildFallsBackOnBadFieldKind(t *testing.T) {
	opts := testOpts()
	opts.Fields = []models.FieldSpec{{Kind: "bogus", DisplayName: "Broken"}}
	f := newFixture(t, opts, fixedNow)
	f.writeDay(t, day(2024, 3, 10), "content")

	got := f.eng.Rebuild(context.Background())

	if !got.Equal(Fallback()) {
		t.Errorf("content = %+v, want fallback", got)
	}
}

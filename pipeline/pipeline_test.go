package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/fpdswatch/models"
	"github.com/use-agent/fpdswatch/state"
)

// memSink records every payload handed to it.
type memSink struct {
	messages []string
}

func (m *memSink) Send(_ context.Context, content string) error {
	m.messages = append(m.messages, content)
	return nil
}

func record(id string) models.Record {
	return models.Record{ID: id, Title: id, Link: "https://www.fpds.gov"}
}

var testFilter = models.SearchFilter{DateFrom: "01/01/2024", DateTo: "01/31/2024"}

func TestProcess_NewAndSeenPartition(t *testing.T) {
	sink := &memSink{}
	p := New(sink, 45*time.Second)

	seen := make(state.SeenSet)
	seen.Add("X")

	outcome := models.Success([]models.Record{record("X"), record("Y")})
	updated, newCount := p.Process(context.Background(), outcome, testFilter, seen)

	if newCount != 1 {
		t.Errorf("newCount = %d, want 1", newCount)
	}
	if len(sink.messages) != 1 || !strings.Contains(sink.messages[0], "Y") {
		t.Errorf("messages = %q, want exactly one notification for Y", sink.messages)
	}
	if got := updated.Sorted(); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("updated seen-set = %v, want [X Y]", got)
	}
}

func TestProcess_Idempotent(t *testing.T) {
	outcome := models.Success([]models.Record{record("A"), record("B")})

	first := &memSink{}
	seen1, n1 := New(first, time.Second).Process(context.Background(), outcome, testFilter, make(state.SeenSet))
	if n1 != 2 {
		t.Fatalf("first run newCount = %d, want 2", n1)
	}

	second := &memSink{}
	seen2, n2 := New(second, time.Second).Process(context.Background(), outcome, testFilter, seen1)
	if n2 != 0 {
		t.Errorf("second run newCount = %d, want 0", n2)
	}
	if !reflect.DeepEqual(seen1, seen2) {
		t.Errorf("second run changed the seen-set: %v -> %v", seen1.Sorted(), seen2.Sorted())
	}
	// Second run yields only the "no new items" summary.
	if len(second.messages) != 1 || !strings.Contains(second.messages[0], "No new") {
		t.Errorf("second run messages = %q, want single no-new summary", second.messages)
	}
}

func TestProcess_MonotonicSuperset(t *testing.T) {
	seen := make(state.SeenSet)
	seen.Add("preexisting")

	outcome := models.Success([]models.Record{record("fresh")})
	updated, _ := New(&memSink{}, time.Second).Process(context.Background(), outcome, testFilter, seen)

	for _, id := range seen.Sorted() {
		if !updated.Has(id) {
			t.Errorf("updated set lost id %q from the input set", id)
		}
	}
	if seen.Has("fresh") {
		t.Error("input seen-set was mutated")
	}
}

func TestProcess_EmptyRecordsSummaries(t *testing.T) {
	tests := []struct {
		name     string
		outcome  models.RunOutcome
		wantPart string
	}{
		{"no table", models.NoTable(), "no results table appeared"},
		{"no rows", models.NoRows(nil), "no rows parsed"},
		{"success empty", models.Success(nil), "No FPDS results found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memSink{}
			seen := make(state.SeenSet)
			seen.Add("held")

			updated, n := New(sink, 45*time.Second).Process(context.Background(), tt.outcome, testFilter, seen)
			if n != 0 {
				t.Errorf("newCount = %d, want 0", n)
			}
			if len(sink.messages) != 1 {
				t.Fatalf("got %d notifications, want exactly 1: %q", len(sink.messages), sink.messages)
			}
			if !strings.Contains(sink.messages[0], tt.wantPart) {
				t.Errorf("message %q does not mention %q", sink.messages[0], tt.wantPart)
			}
			if !reflect.DeepEqual(updated, seen) {
				t.Errorf("seen-set changed on an empty run: %v", updated.Sorted())
			}
		})
	}
}

func TestProcess_NoRowsWithLaterPageRecords(t *testing.T) {
	// First page parsed empty but pagination found rows: the row-less
	// notice still goes out, followed by the record notifications.
	sink := &memSink{}
	outcome := models.NoRows([]models.Record{record("late")})

	updated, n := New(sink, time.Second).Process(context.Background(), outcome, testFilter, make(state.SeenSet))
	if n != 1 {
		t.Errorf("newCount = %d, want 1", n)
	}
	if len(sink.messages) != 2 {
		t.Fatalf("got %d notifications, want notice + record: %q", len(sink.messages), sink.messages)
	}
	if !strings.Contains(sink.messages[0], "no rows parsed") {
		t.Errorf("first message should be the no-rows notice, got %q", sink.messages[0])
	}
	if !strings.Contains(sink.messages[1], "late") {
		t.Errorf("second message should announce the record, got %q", sink.messages[1])
	}
	if !updated.Has("late") {
		t.Error("record id not folded into the seen-set")
	}
}

func TestProcess_FailureLeavesStateAlone(t *testing.T) {
	sink := &memSink{}
	seen := make(state.SeenSet)
	seen.Add("kept")

	updated, n := New(sink, time.Second).Process(context.Background(),
		models.Failure(errors.New("browser exploded")), testFilter, seen)

	if n != 0 {
		t.Errorf("newCount = %d, want 0", n)
	}
	if len(sink.messages) != 1 || !strings.Contains(sink.messages[0], "browser exploded") {
		t.Errorf("messages = %q, want single error notification", sink.messages)
	}
	if !reflect.DeepEqual(updated, seen) {
		t.Error("failure outcome must not touch the seen-set")
	}
}

func TestProcess_BlankIDSkipped(t *testing.T) {
	sink := &memSink{}
	outcome := models.Success([]models.Record{
		{ID: "   ", Title: "ghost", Link: "https://www.fpds.gov"},
		record("solid"),
	})

	updated, n := New(sink, time.Second).Process(context.Background(), outcome, testFilter, make(state.SeenSet))
	if n != 1 {
		t.Errorf("newCount = %d, want 1 (blank ids never notify)", n)
	}
	if updated.Has("") || updated.Has("   ") {
		t.Error("blank id leaked into the seen-set")
	}
}

func TestProcess_DuplicateIDsWithinRun(t *testing.T) {
	sink := &memSink{}
	outcome := models.Success([]models.Record{record("dup"), record("dup")})

	_, n := New(sink, time.Second).Process(context.Background(), outcome, testFilter, make(state.SeenSet))
	if n != 1 {
		t.Errorf("newCount = %d, want 1 (same id in one run notifies once)", n)
	}
	if len(sink.messages) != 1 {
		t.Errorf("got %d notifications, want 1: %q", len(sink.messages), sink.messages)
	}
}

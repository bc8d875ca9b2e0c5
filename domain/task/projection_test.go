package task

import (
	"testing"
	"time"
)

func fixtureTasks() []Task {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	due2099 := NewDate(2099, time.January, 1)
	due2020 := NewDate(2020, time.January, 1)

	return []Task{
		{ID: 1, Title: "A", Description: "write report", Priority: PriorityLow, CreatedAt: base},
		{ID: 2, Title: "B", Description: "Buy milk", Completed: true, Priority: PriorityHigh, CreatedAt: base.Add(time.Hour), DueDate: &due2099},
		{ID: 3, Title: "C", Priority: PriorityMedium, CreatedAt: base.Add(2 * time.Hour), DueDate: &due2020},
	}
}

func ids(tasks []Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProject(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{name: "zero query keeps everything in order", query: Query{}, want: []int64{1, 2, 3}},
		{name: "all", query: Query{Status: StatusAll}, want: []int64{1, 2, 3}},
		{name: "pending", query: Query{Status: StatusPending}, want: []int64{1, 3}},
		{name: "completed", query: Query{Status: StatusCompleted}, want: []int64{2}},
		{name: "search title case-insensitive", query: Query{Search: "b"}, want: []int64{2}},
		{name: "search description", query: Query{Search: "REPORT"}, want: []int64{1}},
		{name: "search no match", query: Query{Search: "zzz"}, want: []int64{}},
		{name: "sort by priority", query: Query{Sort: SortPriority}, want: []int64{2, 3, 1}},
		{name: "sort by created date newest first", query: Query{Sort: SortDate}, want: []int64{3, 2, 1}},
		{name: "sort by due date, missing last", query: Query{Sort: SortDueDate}, want: []int64{3, 2, 1}},
		{name: "filter then sort", query: Query{Status: StatusPending, Sort: SortPriority}, want: []int64{3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Project(fixtureTasks(), tt.query))
			if !equalIDs(got, tt.want) {
				t.Errorf("Project() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_StableOnTies(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: 10, Title: "x", Priority: PriorityLow, CreatedAt: created},
		{ID: 11, Title: "y", Priority: "urgent", CreatedAt: created},
		{ID: 12, Title: "z", Priority: PriorityLow, CreatedAt: created},
		{ID: 13, Title: "w", Priority: PriorityHigh, CreatedAt: created},
	}

	t.Run("priority ties keep input order, unranked last", func(t *testing.T) {
		got := ids(Project(tasks, Query{Sort: SortPriority}))
		want := []int64{13, 10, 12, 11}
		if !equalIDs(got, want) {
			t.Errorf("Project() = %v, want %v", got, want)
		}
	})

	t.Run("equal created dates keep input order", func(t *testing.T) {
		got := ids(Project(tasks, Query{Sort: SortDate}))
		want := []int64{10, 11, 12, 13}
		if !equalIDs(got, want) {
			t.Errorf("Project() = %v, want %v", got, want)
		}
	})

	t.Run("no due dates keep input order", func(t *testing.T) {
		got := ids(Project(tasks, Query{Sort: SortDueDate}))
		want := []int64{10, 11, 12, 13}
		if !equalIDs(got, want) {
			t.Errorf("Project() = %v, want %v", got, want)
		}
	})
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	tasks := fixtureTasks()
	before := ids(tasks)

	_ = Project(tasks, Query{Status: StatusPending, Sort: SortPriority})

	if after := ids(tasks); !equalIDs(before, after) {
		t.Errorf("input reordered: %v -> %v", before, after)
	}
}

func TestParseStatusAndSort(t *testing.T) {
	if got := ParseStatus("pending"); got != StatusPending {
		t.Errorf("ParseStatus(pending) = %q", got)
	}
	if got := ParseStatus("bogus"); got != StatusAll {
		t.Errorf("ParseStatus(bogus) = %q, want all", got)
	}
	if got := ParseSort("dueDate"); got != SortDueDate {
		t.Errorf("ParseSort(dueDate) = %q", got)
	}
	if got := ParseSort(""); got != SortNone {
		t.Errorf("ParseSort(\"\") = %q, want none", got)
	}
}

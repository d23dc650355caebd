package timespan

import (
	"testing"
	"time"
)

func at(h int) time.Time {
	return time.Date(2024, 1, 15, h, 0, 0, 0, time.UTC)
}

func TestSpan_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		span Span
		want bool
	}{
		{
			name: "end after start",
			span: New(at(9), at(10)),
			want: true,
		},
		{
			name: "zero duration",
			span: New(at(9), at(9)),
			want: false,
		},
		{
			name: "end before start",
			span: New(at(10), at(9)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.span.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpan_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{
			name: "partial overlap",
			a:    New(at(9), at(11)),
			b:    New(at(10), at(12)),
			want: true,
		},
		{
			name: "containment",
			a:    New(at(9), at(17)),
			b:    New(at(10), at(11)),
			want: true,
		},
		{
			name: "identical spans",
			a:    New(at(9), at(10)),
			b:    New(at(9), at(10)),
			want: true,
		},
		{
			name: "touching endpoints do not overlap",
			a:    New(at(9), at(10)),
			b:    New(at(10), at(11)),
			want: false,
		},
		{
			name: "disjoint",
			a:    New(at(9), at(10)),
			b:    New(at(14), at(15)),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			// Overlap is symmetric.
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	t.Parallel()

	s := New(at(9), at(10))

	if !s.Contains(at(9)) {
		t.Error("Contains(start) = false, want true (start is inclusive)")
	}
	if s.Contains(at(10)) {
		t.Error("Contains(end) = true, want false (end is exclusive)")
	}
	if s.Contains(at(8)) {
		t.Error("Contains(before start) = true, want false")
	}
}

func TestMonth(t *testing.T) {
	t.Parallel()

	s := Month(2024, time.February)

	wantStart := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !s.Start.Equal(wantStart) {
		t.Errorf("Month start = %v, want %v", s.Start, wantStart)
	}
	if !s.End.Equal(wantEnd) {
		t.Errorf("Month end = %v, want %v", s.End, wantEnd)
	}

	// December rolls over the year boundary.
	dec := Month(2024, time.December)
	if got := dec.End.Year(); got != 2025 {
		t.Errorf("December end year = %d, want 2025", got)
	}
}

func TestDay(t *testing.T) {
	t.Parallel()

	s := Day(time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC))

	if !s.Start.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day start = %v, want midnight", s.Start)
	}
	if !s.End.Equal(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day end = %v, want next midnight", s.End)
	}
}

func TestDaysIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysIn(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

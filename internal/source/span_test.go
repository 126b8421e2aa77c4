package source

import (
	"testing"
)

func TestSpanNone(t *testing.T) {
	if !(Span{}).None() {
		t.Error("zero span must report None")
	}
	if (Span{File: 1}).None() {
		t.Error("span with a file must not report None")
	}
	if (Span{Start: 4, End: 4}).None() {
		t.Error("non-zero offsets must not report None")
	}
}

func TestSpanEmptyAndLen(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 10}
	if !s.Empty() {
		t.Error("zero-length span must be Empty")
	}
	s.End = 14
	if s.Empty() {
		t.Error("span with content must not be Empty")
	}
	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		span     Span
		other    Span
		expected Span
	}{
		{
			name:     "other extends right",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 15, End: 30},
			expected: Span{File: 1, Start: 10, End: 30},
		},
		{
			name:     "other extends left",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 2, End: 12},
			expected: Span{File: 1, Start: 2, End: 20},
		},
		{
			name:     "other inside",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 1, Start: 12, End: 14},
			expected: Span{File: 1, Start: 10, End: 20},
		},
		{
			name:     "different file ignored",
			span:     Span{File: 1, Start: 10, End: 20},
			other:    Span{File: 2, Start: 0, End: 100},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Cover(tt.other); got != tt.expected {
				t.Errorf("Cover = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

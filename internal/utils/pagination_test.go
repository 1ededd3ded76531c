package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// valid ints
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		// invalid -> default (no trim)
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size, max    int
		wantPage, wantSize int
	}{
		{0, 0, 100, 1, 1},
		{-3, 20, 100, 1, 20},
		{2, 500, 100, 2, 100},
		{4, 50, 0, 4, 50}, // no cap
	}
	for _, tc := range cases {
		p, s := ClampPage(tc.page, tc.size, tc.max)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("ClampPage(%d,%d,%d) = (%d,%d); want (%d,%d)", tc.page, tc.size, tc.max, p, s, tc.wantPage, tc.wantSize)
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	got, pages := Paginate(items, 1, 2)
	if len(got) != 2 || got[0] != 1 || pages != 3 {
		t.Fatalf("page 1: %v pages=%d", got, pages)
	}
	got, _ = Paginate(items, 3, 2)
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("last page: %v", got)
	}
	got, pages = Paginate(items, 4, 2)
	if got == nil || len(got) != 0 || pages != 3 {
		t.Fatalf("past end: %v pages=%d", got, pages)
	}
	got, pages = Paginate([]int{}, 1, 10)
	if len(got) != 0 || pages != 0 {
		t.Fatalf("empty: %v pages=%d", got, pages)
	}
}

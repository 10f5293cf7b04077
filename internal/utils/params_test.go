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

func TestParseID(t *testing.T) {
	cases := []struct {
		s    string
		want uint
		ok   bool
	}{
		{"1", 1, true},
		{" 42 ", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"1.5", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseID(tc.s)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseID(%q) = (%d, %v); want (%d, %v)", tc.s, got, ok, tc.want, tc.ok)
		}
	}
}

func TestOptionalID(t *testing.T) {
	if p, ok := OptionalID("  "); p != nil || !ok {
		t.Fatalf("blank must be absent and valid")
	}
	if p, ok := OptionalID("7"); !ok || p == nil || *p != 7 {
		t.Fatalf("OptionalID(7) = %v, %v", p, ok)
	}
	if _, ok := OptionalID("x"); ok {
		t.Fatalf("OptionalID(x) must be invalid")
	}
}

func TestOptionalBool(t *testing.T) {
	if p, ok := OptionalBool(""); p != nil || !ok {
		t.Fatalf("blank must be absent and valid")
	}
	if p, ok := OptionalBool("TRUE"); !ok || p == nil || !*p {
		t.Fatalf("OptionalBool(TRUE) = %v, %v", p, ok)
	}
	if p, ok := OptionalBool("0"); !ok || p == nil || *p {
		t.Fatalf("OptionalBool(0) = %v, %v", p, ok)
	}
	if _, ok := OptionalBool("maybe"); ok {
		t.Fatalf("OptionalBool(maybe) must be invalid")
	}
}

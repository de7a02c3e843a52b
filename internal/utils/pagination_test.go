package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 7, 7},
		{"abc", 7, 7},
		{"12", 7, 12},
		{"-3", 7, -3},
		{"1.5", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestAtoiUint(t *testing.T) {
	if n, ok := AtoiUint("42"); !ok || n != 42 {
		t.Fatalf("AtoiUint(42) = %d, %v", n, ok)
	}
	for _, in := range []string{"", "abc", "-1", "0", "1.5", "99999999999999"} {
		if _, ok := AtoiUint(in); ok {
			t.Fatalf("AtoiUint(%q) unexpectedly ok", in)
		}
	}
}

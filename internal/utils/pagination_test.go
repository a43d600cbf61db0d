package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7},
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct{ page, size, wantPage, wantSize int }{
		{0, 0, 1, 20},
		{-3, 5, 1, 5},
		{2, 500, 2, 100},
		{4, 100, 4, 100},
	}
	for _, tc := range cases {
		p, s := ClampPage(tc.page, tc.size, 20, 100)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("ClampPage(%d, %d) = %d, %d", tc.page, tc.size, p, s)
		}
	}
}

func TestParseOptionalFloat(t *testing.T) {
	if v, err := ParseOptionalFloat("  "); v != nil || err != nil {
		t.Fatalf("blank = %v, %v", v, err)
	}
	if v, err := ParseOptionalFloat("-1.2921"); err != nil || *v != -1.2921 {
		t.Fatalf("valid = %v, %v", v, err)
	}
	for _, bad := range []string{"abc", "NaN", "+Inf", "1,5"} {
		if _, err := ParseOptionalFloat(bad); err == nil {
			t.Fatalf("ParseOptionalFloat(%q) should fail", bad)
		}
	}
}

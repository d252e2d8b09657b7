package champions

import (
	"testing"
)

func TestNormaliseName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"apostrophe", "Kai'Sa", "kaisa"},
		{"space", "Lee Sin", "leesin"},
		{"period", "Dr. Mundo", "drmundo"},
		{"historical override", "MonkeyKing", "wukong"},
		{"override is case-insensitive", "monkeyking", "wukong"},
		{"already normalised", "ahri", "ahri"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormaliseName(tc.in); got != tc.want {
				t.Fatalf("NormaliseName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

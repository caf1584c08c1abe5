package colorutil

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseHex(t *testing.T) {
	testCases := []struct {
		in   string
		want color.RGBA
	}{
		{"#0000ff", Blue},
		{"ffff00", Yellow},
		{"#fff", White},
		{"#00800080", color.RGBA{G: 128, A: 128}},
	}
	for _, tc := range testCases {
		got, err := ParseHex(tc.in)
		if err != nil {
			t.Fatalf("ParseHex(%q): %v", tc.in, err)
		}
		if d := cmp.Diff(tc.want, got); d != "" {
			t.Errorf("ParseHex(%q) mismatch (-want +got):\n%s", tc.in, d)
		}
		if back, _ := ParseHex(Hex(got)); back != got {
			t.Errorf("Hex(%v) = %q does not parse back", got, Hex(got))
		}
	}
}

func TestParseHexInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "#1234567"} {
		if _, err := ParseHex(in); err == nil {
			t.Errorf("ParseHex(%q) succeeded, want error", in)
		}
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   color.RGBA
		want string
	}{
		{Green, "#008000"},
		{color.RGBA{R: 1, G: 2, B: 3, A: 255}, "#010203"},
		{color.RGBA{R: 255, A: 0x0f}, "#ff00000f"},
	}
	for _, tc := range tests {
		if got := Hex(tc.in); got != tc.want {
			t.Errorf("Hex(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

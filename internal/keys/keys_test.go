package keys

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		prefix string
		id     uint
		want   string
	}{
		{"PROJ", 7, "PROJ-007"},
		{"PROJ-007", 15, "PROJ-007-015"},
		{"AB", 1234, "AB-1234"},
	}
	for _, tc := range cases {
		if got := Format(tc.prefix, tc.id); got != tc.want {
			t.Errorf("Format(%q, %d) = %q, want %q", tc.prefix, tc.id, got, tc.want)
		}
	}
}

func TestFormatRelease(t *testing.T) {
	if got := FormatRelease("PROJ-007", 42); got != "PROJ-007-R042" {
		t.Errorf("FormatRelease = %q, want PROJ-007-R042", got)
	}
}

func TestCodeFromName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Demo", "DEMO"},
		{"Agile Board Tool", "ABT"},
		{"supercalifragilistic", "SUPERCALIF"},
		{"x", "XX"},
		{"!!!", "PROJ"},
		{"", "PROJ"},
	}
	for _, tc := range cases {
		if got := CodeFromName(tc.name); got != tc.want {
			t.Errorf("CodeFromName(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCodeFromNameNonASCII(t *testing.T) {
	// Characters outside ASCII letters/digits are stripped before any
	// indexing, so names in other alphabets never yield a mangled code.
	cases := []struct {
		name string
		want string
	}{
		{"Über App", "BA"},
		{"Übermensch", "BERMENSCH"},
		{"Über", "BER"},
		{"проект", "PROJ"},
		{"日本語 Tracker", "TRACKER"},
	}
	for _, tc := range cases {
		got := CodeFromName(tc.name)
		if got != tc.want {
			t.Errorf("CodeFromName(%q) = %q, want %q", tc.name, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("CodeFromName(%q) = %q is not valid UTF-8", tc.name, got)
		}
	}
}

func TestPlaceholderDistinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		p := Placeholder()
		if !strings.HasPrefix(p, "TMP-") {
			t.Fatalf("placeholder %q missing TMP prefix", p)
		}
		if _, dup := seen[p]; dup {
			t.Fatalf("placeholder collision: %q", p)
		}
		seen[p] = struct{}{}
	}
}

package textnorm_test

import (
	"strings"
	"testing"

	"github.com/zipscout/zipscout/internal/textnorm"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "123 Main St", "123 Main St"},
		{"collapses whitespace", "  123   Main \t St ", "123 Main St"},
		{"private use area dropped", "123 Main St", "123 Main St"},
		{"zero width dropped", "123\u200B Main\u200D St\uFEFF", "123 Main St"},
		{"exotic spaces mapped", "123 Main St　Springfield", "123 Main St Springfield"},
		{"leading bullet stripped", "• 123 Main St", "123 Main St"},
		{"leading dash stripped", "– 450 Oak Ave", "450 Oak Ave"},
		{"repeated leading glyphs stripped", "• • 123 Main St", "123 Main St"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textnorm.Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"• • 123 Main St",
		"– • – 450 Oak Ave",
		"   • 9 Elm Rd, Dover, DE 19901",
		"plain text with no junk",
		strings.Repeat("\u200B", 40) + "77 Pine Blvd",
	}
	for _, in := range inputs {
		once := textnorm.Normalize(in)
		twice := textnorm.Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestNormalizeRemovesAllPrivateUse(t *testing.T) {
	t.Parallel()

	in := " 101  Birch \U000F0001 Ct \U00100001"
	out := textnorm.Normalize(in)
	for _, r := range out {
		if r >= 0xE000 && r <= 0xF8FF {
			t.Fatalf("private use rune %U survived in %q", r, out)
		}
	}
	if out != "101 Birch Ct" {
		t.Fatalf("got %q", out)
	}
}

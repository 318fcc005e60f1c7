// Package textnorm cleans raw text pulled out of rendered pages before it is
// parsed. Map result panes decorate address strings with icon glyphs from the
// Unicode private use area, zero-width separators, and non-ASCII spaces; all
// of that has to go before any shape heuristic can run.
package textnorm

import "strings"

// leadingGlyphs are bullet/dash characters that show up at the start of
// extracted address lines.
var leadingGlyphs = "•·‣⁃∙▪●–—-"

// Normalize strips decorative code points and collapses whitespace.
// It is total and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isPrivateUse(r):
			// Icon font glyphs; drop entirely.
		case isZeroWidth(r):
		case isExoticSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	// Space in the cutset clears mixed "glyph space glyph" prefixes in one
	// pass, keeping the function idempotent.
	out = strings.TrimLeft(out, leadingGlyphs+" ")
	return strings.TrimSpace(out)
}

func isPrivateUse(r rune) bool {
	return (r >= 0xE000 && r <= 0xF8FF) ||
		(r >= 0xF0000 && r <= 0xFFFFD) ||
		(r >= 0x100000 && r <= 0x10FFFD)
}

func isZeroWidth(r rune) bool {
	switch r {
	case 0x200B, 0x200C, 0x200D, 0x2060, 0xFEFF:
		return true
	}
	return false
}

func isExoticSpace(r rune) bool {
	switch r {
	case 0x00A0, 0x1680, 0x202F, 0x205F, 0x3000:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

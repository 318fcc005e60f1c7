// Package cleanerr renders faults as single-line, bounded strings safe to
// embed in CSV rows and the run archive.
package cleanerr

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxDetailLen = 300

var (
	// chromedp and net/http error strings can carry full URLs with query
	// params; keep the host, drop the rest.
	urlQueryRe = regexp.MustCompile(`(\bhttps?://[^\s?"']+)\?[^\s"']*`)

	// Matches "Bearer <token>" and key=value credential fragments that leak
	// into error strings via downstream libraries.
	bearerTokenRe = regexp.MustCompile(`(?i)\bBearer\s+[^\s"']+`)
	apiKeyKVRe    = regexp.MustCompile(`(?i)\b(api[_-]?key|token)\b\s*[:=]\s*[^\s"']+`)

	wsRe = regexp.MustCompile(`\s+`)
)

// Detail flattens err into one sanitized line, capped in length. It is safe
// to call on any error, including nil.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// String sanitizes an already-rendered message the same way Detail does.
func String(msg string) string {
	out := bearerTokenRe.ReplaceAllString(msg, "Bearer <redacted>")
	out = apiKeyKVRe.ReplaceAllString(out, "$1=<redacted>")
	out = urlQueryRe.ReplaceAllString(out, "$1")
	out = wsRe.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)
	if len(out) > maxDetailLen {
		cut := maxDetailLen
		// The cap must not split a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(out[cut]) {
			cut--
		}
		out = out[:cut]
	}
	return out
}

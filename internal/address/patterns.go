package address

import "regexp"

// The pattern tables below are the tuning surface for the whole pipeline.
// They are package-level vars, not constants baked into the orchestration,
// so that selector drift on the search page can be answered by editing a
// table instead of touching control flow.

// streetSuffixRe matches the suffix token that a plausible US street line
// ends with (or contains). Word-bounded, optional trailing period.
var streetSuffixRe = regexp.MustCompile(`(?i)\b(?:st|street|ave|avenue|rd|road|dr|drive|blvd|boulevard|way|ln|lane|ct|court|pl|place|cir|circle|pkwy|parkway|hwy|highway|ter|terrace|trl|trail|sq|square|loop|broadway)\.?\b`)

// streetLineRe matches a leading "number ... suffix" span inside free text
// that has no comma structure to split on.
var streetLineRe = regexp.MustCompile(`(?i)\b(\d+[\w\-]*\s+[\w.\-' ]*?\b(?:st|street|ave|avenue|rd|road|dr|drive|blvd|boulevard|way|ln|lane|ct|court|pl|place|cir|circle|pkwy|parkway|hwy|highway|ter|terrace|trl|trail|sq|square|loop|broadway)\.?)(?:\b|$)`)

// cityStateZipSuffixRe strips a trailing "ST 12345[-6789]" tail from a city
// segment ("Springfield IL 62704" -> "Springfield").
var cityStateZipSuffixRe = regexp.MustCompile(`\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?\s*$`)

var (
	digitRe       = regexp.MustCompile(`\d`)
	zip5Re        = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	letterRe      = regexp.MustCompile(`[A-Za-z]`)
	cityCharsetRe = regexp.MustCompile(`^[A-Za-z\s'.\-]+$`)
)

// improperContentRes reject text that came from the wrong part of a result
// card: ratings, review counts, venue blurbs, opening hours. These leak into
// address slots whenever the page layout shifts under the selectors.
var improperContentRes = []*regexp.Regexp{
	regexp.MustCompile(`\d\.\d\s*\(\d+`),        // "4.2(318)" rating + review count
	regexp.MustCompile(`(?i)\b\d(\.\d)?\s*star`), // "4 star", "4.5 stars"
	regexp.MustCompile(`(?i)\breviews?\b`),
	regexp.MustCompile(`(?i)\bratings?\b`),
	regexp.MustCompile(`(?i)\b(?:hotel|motel|inn|resort|hostel|lodge|suites)\b`),
	regexp.MustCompile(`(?i)\b(?:restaurant|cafe|coffee|bar|grill|diner|bakery|pizzeria)\b`),
	regexp.MustCompile(`(?i)\b(?:store|shop|mall|supermarket|pharmacy|salon|gym|clinic|dental)\b`),
	regexp.MustCompile(`(?i)\b(?:open|opens|closed|closes)\b`),
	regexp.MustCompile(`(?i)\b(?:24 hours|hours)\b`),
	regexp.MustCompile(`(?i)\b(?:am|pm)\b\s*[\x{00B7}\x{22C5}-]`),
	regexp.MustCompile(`(?i)\btemporarily\b`),
	regexp.MustCompile(`(?i)\bpermanently\b`),
}

// citySentinels are placeholder values that must never validate as a city.
var citySentinels = map[string]struct{}{
	"unknown":   {},
	"n/a":       {},
	"na":        {},
	"null":      {},
	"undefined": {},
	"not found": {},
	"error":     {},
}

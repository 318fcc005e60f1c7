// Package address turns raw text scraped from a result page into a
// (street line, city) pair and decides whether that pair is shaped like a
// real US street address.
package address

import (
	"strings"

	"github.com/zipscout/zipscout/internal/textnorm"
)

// UnknownCity is the fallback city when no city segment can be recovered.
const UnknownCity = "Unknown"

// Parsed is a candidate address. It has not been validated yet.
type Parsed struct {
	StreetLine string
	City       string
}

// Parse splits raw extracted text into a street line and a city.
//
// It never fails: when no structure can be recovered the whole (normalized)
// text becomes the street line and the city is UnknownCity.
func Parse(text string) Parsed {
	norm := textnorm.Normalize(text)
	if norm == "" {
		return Parsed{StreetLine: text, City: UnknownCity}
	}

	if strings.Contains(norm, ",") {
		segs := splitTrim(norm, ",")
		if len(segs) >= 2 {
			return Parsed{
				StreetLine: segs[0],
				City:       stripStateZipTail(segs[1]),
			}
		}
	}

	// No comma structure: look for a leading "number ... suffix" span.
	if loc := streetLineRe.FindStringSubmatchIndex(norm); loc != nil {
		street := strings.TrimSpace(norm[loc[2]:loc[3]])
		rest := strings.TrimSpace(norm[loc[3]:])
		city := UnknownCity
		if segs := splitTrim(rest, ","); len(segs) > 0 && segs[0] != "" {
			city = stripStateZipTail(segs[0])
		}
		return Parsed{StreetLine: street, City: city}
	}

	return Parsed{StreetLine: norm, City: UnknownCity}
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stripStateZipTail removes a trailing "IL 62704" style tail from a city
// segment.
func stripStateZipTail(s string) string {
	return strings.TrimSpace(cityStateZipSuffixRe.ReplaceAllString(s, ""))
}

// Zips returns every 5-digit ZIP (optionally ZIP+4) mentioned in the text.
func Zips(text string) []string {
	matches := zip5Re.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if i := strings.IndexByte(m, '-'); i >= 0 {
			m = m[:i]
		}
		out = append(out, m)
	}
	return out
}

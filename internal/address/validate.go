package address

import "strings"

// ValidStreetLine reports whether s is shaped like a US street line: it must
// carry a number and a street-suffix token, and must not look like rating,
// venue, or opening-hours noise.
func ValidStreetLine(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !digitRe.MatchString(s) {
		return false
	}
	if !streetSuffixRe.MatchString(s) {
		return false
	}
	for _, re := range improperContentRes {
		if re.MatchString(s) {
			return false
		}
	}
	return true
}

// ValidCity reports whether s is a plausible city name.
func ValidCity(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if len(s) < 2 || len(s) > 50 {
		return false
	}
	if _, sentinel := citySentinels[strings.ToLower(s)]; sentinel {
		return false
	}
	if !cityCharsetRe.MatchString(s) {
		return false
	}
	first := s[0]
	if !(first >= 'A' && first <= 'Z' || first >= 'a' && first <= 'z') {
		return false
	}
	if !letterRe.MatchString(s) {
		return false
	}
	if zip5Re.MatchString(s) {
		return false
	}
	for _, re := range improperContentRes {
		if re.MatchString(s) {
			return false
		}
	}
	return true
}

// Valid reports whether the pair passes both predicates.
func Valid(p Parsed) bool {
	return ValidStreetLine(p.StreetLine) && ValidCity(p.City)
}

// LooksLikeAddress is the cheap pre-filter used while scanning page text: a
// digit somewhere before a street-suffix token. It deliberately accepts more
// than Valid does; candidates still go through Parse + Valid afterwards.
func LooksLikeAddress(s string) bool {
	loc := digitRe.FindStringIndex(s)
	if loc == nil {
		return false
	}
	return streetSuffixRe.MatchString(s[loc[0]:])
}

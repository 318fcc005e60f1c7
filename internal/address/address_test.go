package address_test

import (
	"strings"
	"testing"

	"github.com/zipscout/zipscout/internal/address"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		in         string
		wantStreet string
		wantCity   string
	}{
		{
			name:       "comma separated with state and zip",
			in:         "123 Main St, Springfield, IL 62704",
			wantStreet: "123 Main St",
			wantCity:   "Springfield",
		},
		{
			name:       "city segment carries state zip tail",
			in:         "456 Elm Ave, Portland OR 97201",
			wantStreet: "456 Elm Ave",
			wantCity:   "Portland",
		},
		{
			name:       "no comma but embedded street",
			in:         "no commas here 42 Oak Ave",
			wantStreet: "42 Oak Ave",
			wantCity:   address.UnknownCity,
		},
		{
			name:       "no structure at all",
			in:         "just some words",
			wantStreet: "just some words",
			wantCity:   address.UnknownCity,
		},
		{
			name:       "decorated input is normalized first",
			in:         "• 9 Pine Rd, Dover, DE 19901",
			wantStreet: "9 Pine Rd",
			wantCity:   "Dover",
		},
		{
			name:       "zip plus four tail",
			in:         "77 Lake Dr, Austin TX 78701-4321",
			wantStreet: "77 Lake Dr",
			wantCity:   "Austin",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := address.Parse(tc.in)
			if got.StreetLine != tc.wantStreet || got.City != tc.wantCity {
				t.Fatalf("Parse(%q) = %+v, want street=%q city=%q", tc.in, got, tc.wantStreet, tc.wantCity)
			}
		})
	}
}

func TestParseNoCommaExtractsSuffixedSpan(t *testing.T) {
	t.Parallel()

	got := address.Parse("USPS location at 1500 Cherry Blossom Lane open late")
	if !strings.HasPrefix(got.StreetLine, "1500") {
		t.Fatalf("street line %q should begin with the number", got.StreetLine)
	}
	if !strings.HasSuffix(got.StreetLine, "Lane") {
		t.Fatalf("street line %q should end with the suffix token", got.StreetLine)
	}
}

func TestValidStreetLine(t *testing.T) {
	t.Parallel()

	valid := []string{
		"123 Main St",
		"4501 W Broadway",
		"77 Cherry Blossom Ln.",
		"1 Infinite Loop",
	}
	invalid := []string{
		"",
		"Main Street",          // no digit
		"123 Somewhere",        // no suffix token
		"4.2(318) Hotel",       // rating noise
		"123 Main St · Open 24 hours",
		"Best Pizza Restaurant 42 Oak Ave",
		"4.5 stars 12 Ocean Blvd",
	}

	for _, s := range valid {
		if !address.ValidStreetLine(s) {
			t.Errorf("ValidStreetLine(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if address.ValidStreetLine(s) {
			t.Errorf("ValidStreetLine(%q) = true, want false", s)
		}
	}
}

func TestValidCity(t *testing.T) {
	t.Parallel()

	valid := []string{
		"Springfield",
		"St. Paul",
		"Winston-Salem",
		"O'Fallon",
		"la crosse",
	}
	invalid := []string{
		"",
		"A",     // too short
		"90210", // all digits
		"Springfield 62704",
		address.UnknownCity,
		"n/a",
		"null",
		"undefined",
		"'Quoted",              // must start with a letter
		"Grand Hotel",          // venue noun
		"Open 24 hours",        // hours noise
		strings.Repeat("a", 51), // too long
	}

	for _, s := range valid {
		if !address.ValidCity(s) {
			t.Errorf("ValidCity(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if address.ValidCity(s) {
			t.Errorf("ValidCity(%q) = true, want false", s)
		}
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	if !address.Valid(address.Parsed{StreetLine: "123 Main St", City: "Springfield"}) {
		t.Fatal("expected pair to validate")
	}
	if address.Valid(address.Parsed{StreetLine: "123 Main St", City: address.UnknownCity}) {
		t.Fatal("Unknown city must not validate")
	}
}

func TestLooksLikeAddress(t *testing.T) {
	t.Parallel()

	yes := []string{
		"123 Main St",
		"drop by 42 Oak Ave tomorrow",
	}
	no := []string{
		"",
		"Main Street",   // no digit at all
		"call 555-0100", // digit but no suffix after it
	}

	for _, s := range yes {
		if !address.LooksLikeAddress(s) {
			t.Errorf("LooksLikeAddress(%q) = false, want true", s)
		}
	}
	for _, s := range no {
		if address.LooksLikeAddress(s) {
			t.Errorf("LooksLikeAddress(%q) = true, want false", s)
		}
	}
}

func TestZips(t *testing.T) {
	t.Parallel()

	got := address.Zips("123 Main St, Springfield, IL 62704-1234 near 10001")
	if len(got) != 2 || got[0] != "62704" || got[1] != "10001" {
		t.Fatalf("Zips = %#v", got)
	}
	if got := address.Zips("no zips here"); len(got) != 0 {
		t.Fatalf("expected none, got %#v", got)
	}
}

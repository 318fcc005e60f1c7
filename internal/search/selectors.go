package search

// searchBaseURL is the map search endpoint; the query is appended with
// spaces collapsed to plus signs.
const searchBaseURL = "https://www.google.com/maps/search/"

const placeLinkFragment = "/maps/place/"

// resultWaitSelectors is what a successfully rendered search response looks
// like: a results feed, a direct place page, or at least the main pane.
// None of them appearing within the timeout means the page never rendered.
var resultWaitSelectors = []string{
	`div[role="feed"]`,
	`a[href*="/maps/place/"]`,
	`h1.DUwDvf`,
	`div[role="main"]`,
}

// placeHeaderSelector marks a search that resolved straight to a single
// place page instead of a result list.
const placeHeaderSelector = `h1.DUwDvf`

// resultLinkSelectors locate result entries, in fallback order. The page
// rotates these class names; the attribute-based first entry is the most
// stable.
var resultLinkSelectors = []string{
	`a[href*="/maps/place/"]`,
	`div.Nv2PK a`,
	`a.hfpxzc`,
	`div[role="article"] a`,
}

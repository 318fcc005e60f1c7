// Package browsertest provides a scriptable in-memory browser.Session for
// exercising the extraction and orchestration layers without Chrome.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zipscout/zipscout/internal/browser"
)

// Page scripts what one URL looks like once loaded.
type Page struct {
	// WaitSelectors are the selectors WaitForAny finds on this page.
	WaitSelectors []string
	// Texts maps a selector to the element texts it yields.
	Texts map[string][]string
	// Links maps a selector to the hrefs it yields (filtered by the
	// hrefContains argument at call time).
	Links map[string][]string
	// HTML is the snapshot returned by HTML().
	HTML string
}

// Session is a fake browser.Session driven by a URL -> Page script.
type Session struct {
	mu sync.Mutex

	Pages map[string]*Page
	// NavErrs fails Navigate for specific URLs.
	NavErrs map[string]error
	// NavErrAll fails every Navigate when set.
	NavErrAll error

	Current     string
	NavHistory  []string
	Consents    int
	Screenshots []string
	Closed      bool
}

var _ browser.Session = (*Session)(nil)

// New returns an empty scriptable session.
func New() *Session {
	return &Session{
		Pages:   map[string]*Page{},
		NavErrs: map[string]error{},
	}
}

// AddPage scripts url and returns the page for further setup.
func (s *Session) AddPage(url string) *Page {
	p := &Page{Texts: map[string][]string{}, Links: map[string][]string{}}
	s.Pages[url] = p
	return p
}

func (s *Session) page() *Page {
	return s.Pages[s.Current]
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NavErrAll != nil {
		return s.NavErrAll
	}
	if err := s.NavErrs[url]; err != nil {
		return err
	}
	s.Current = url
	s.NavHistory = append(s.NavHistory, url)
	return nil
}

func (s *Session) WaitForAny(_ context.Context, selectors []string, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page()
	if p == nil {
		return "", fmt.Errorf("no selector matched within %s", timeout)
	}
	for _, want := range selectors {
		for _, have := range p.WaitSelectors {
			if want == have {
				return want, nil
			}
		}
	}
	return "", fmt.Errorf("no selector matched within %s", timeout)
}

func (s *Session) Texts(_ context.Context, selector string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page()
	if p == nil {
		return nil, nil
	}
	return p.Texts[selector], nil
}

func (s *Session) Links(_ context.Context, selector, hrefContains string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page()
	if p == nil {
		return nil, nil
	}
	var out []string
	for _, href := range p.Links[selector] {
		if strings.Contains(href, hrefContains) {
			out = append(out, href)
		}
	}
	return out, nil
}

func (s *Session) HTML(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page()
	if p == nil {
		return "", nil
	}
	return p.HTML, nil
}

func (s *Session) DismissConsent(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Consents++
}

func (s *Session) Screenshot(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Screenshots = append(s.Screenshots, path)
	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
}

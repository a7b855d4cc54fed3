package webextract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// UnknownFestival is returned when no acceptable festival name candidate is
// found on the page.
const UnknownFestival = "Unknown Festival"

var (
	titleSeparators = regexp.MustCompile(`\s*[|\-–—:]\s*`)
	trailingSuffix  = regexp.MustCompile(`(?i)\s+(lineup|artists?|schedule|tickets?|\d{4})$`)

	genericNames = map[string]bool{
		"lineup": true, "artists": true, "line-up": true, "schedule": true,
		"tickets": true, "home": true, "festival": true,
	}
)

// festivalName resolves the festival name from the page title, the first
// heading, and the URL's domain label, in that order of preference.
func festivalName(doc *html.Node, pageURL string) string {
	var candidates []string

	if title := findFirst(doc, func(n *html.Node) bool { return isElement(n, "title") }); title != nil {
		for _, part := range titleSeparators.Split(nodeText(title), -1) {
			if part = strings.TrimSpace(part); part != "" {
				candidates = append(candidates, part)
			}
		}
	}

	if h1 := findFirst(doc, func(n *html.Node) bool { return isElement(n, "h1") }); h1 != nil {
		if t := nodeText(h1); t != "" {
			candidates = append(candidates, t)
		}
	}

	if d := domainLabel(pageURL); d != "" {
		candidates = append(candidates, d)
	}

	for _, candidate := range candidates {
		if genericNames[strings.ToLower(candidate)] || len(candidate) <= 2 {
			continue
		}
		cleaned := strings.TrimSpace(trailingSuffix.ReplaceAllString(candidate, ""))
		if cleaned != "" && !genericNames[strings.ToLower(cleaned)] {
			return cleaned
		}
		return candidate
	}

	if len(candidates) > 0 {
		return candidates[0]
	}
	return UnknownFestival
}

// domainLabel derives a readable name from the URL's host, e.g.
// "creamfields" from creamfields.com.
func domainLabel(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	label, _, _ := strings.Cut(host, ".")
	if len(label) <= 2 {
		return ""
	}
	return titleCase(strings.ReplaceAll(label, "-", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

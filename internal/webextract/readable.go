package webextract

import (
	"strings"

	"golang.org/x/net/html"
)

// readableRoot locates the node most likely to hold the page's article body,
// in the manner of browser reader views: paragraph text mass votes for its
// container, discounted by link density. Returns nil when no container
// accumulates enough meaningful text, which is the common case for pure
// lineup-list pages.
func readableRoot(doc *html.Node) *html.Node {
	scores := make(map[*html.Node]float64)

	for _, p := range findAll(doc, func(n *html.Node) bool { return isElement(n, "p") }) {
		text := nodeText(p)
		if len(text) < 25 {
			continue
		}
		score := 1 + float64(len(text))/100 + float64(strings.Count(text, ","))
		if p.Parent != nil {
			scores[p.Parent] += score
			if p.Parent.Parent != nil {
				scores[p.Parent.Parent] += score / 2
			}
		}
	}

	var best *html.Node
	var bestScore float64
	for n, s := range scores {
		s *= 1 - linkDensity(n)
		if s > bestScore {
			best, bestScore = n, s
		}
	}

	if best == nil || len(nodeText(best)) < minReadableChars {
		return nil
	}
	return best
}

// linkDensity is the share of a node's text that sits inside anchors.
func linkDensity(n *html.Node) float64 {
	total := len(nodeText(n))
	if total == 0 {
		return 0
	}
	linked := 0
	for _, a := range findAll(n, func(c *html.Node) bool { return isElement(c, "a") }) {
		linked += len(nodeText(a))
	}
	return float64(linked) / float64(total)
}

package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skippedElements contain nested senses, quotations and examples, that are not part of definition
var skippedElements = map[atom.Atom]bool{
	atom.Ol:     true,
	atom.Ul:     true,
	atom.Dl:     true,
	atom.Style:  true,
	atom.Script: true,
}

// skippedClasses are inline elements with editorial content
var skippedClasses = []string{
	"reference",
	"mw-editsection",
	"HQToggle",
	"maintenance-line",
}

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// definitionText returns text of n without nested lists, with collapsed whitespaces
func definitionText(n *html.Node) string {
	var b strings.Builder
	writeText(&b, n)
	return strings.TrimSpace(whitespaceRegexp.ReplaceAllString(b.String(), " "))
}

func writeText(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			if skippedElements[c.DataAtom] || hasAnyClass(c, skippedClasses) {
				continue
			}
			writeText(b, c)
		}
	}
}

func hasAnyClass(n *html.Node, classes []string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			for _, c := range classes {
				if class == c {
					return true
				}
			}
		}
	}
	return false
}

package verdict

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup flattens a rule description to plain text. Scanner output
// sometimes embeds HTML fragments in descriptions and failure summaries;
// those must not leak markup into template comments.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return strings.TrimSpace(s)
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(buf.String()), " ")
}

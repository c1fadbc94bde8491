package source

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/kailas-cloud/feedradar/internal/text"
)

// stripHTML returns the visible text of an HTML fragment: tags removed,
// entities decoded, whitespace collapsed. Feed summaries and forum bodies
// arrive as markup; analysis and similarity run on plain text.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return text.CollapseWhitespace(s)
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return text.CollapseWhitespace(s)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return text.CollapseWhitespace(b.String())
}

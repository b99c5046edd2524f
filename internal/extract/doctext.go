package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// DocumentText extracts the visible text from an HTML-formatted claim
// attachment (bills, memos, and discharge summaries are commonly HTML
// exports). Script, style, noscript, and iframe content is skipped. Plain
// text passes through unchanged when parsing finds no markup to strip.
func DocumentText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	return visibleText(doc), nil
}

// visibleText walks the parse tree collecting text nodes.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}

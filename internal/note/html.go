package note

import (
	"strings"

	"golang.org/x/net/html"
)

var skippedHTMLElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// extractHTMLText returns the document title and its visible text,
// one text run per line.
func extractHTMLText(document string) (string, string, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", "", err
	}

	var title string
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedHTMLElements[n.Data] {
				return
			}
			if n.Data == "title" {
				title = strings.TrimSpace(getNodeText(n))
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return title, strings.Join(lines, "\n"), nil
}

func getNodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(getNodeText(c))
	}
	return b.String()
}

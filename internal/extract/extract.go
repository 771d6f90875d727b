// ABOUTME: Heuristic extraction of main article content from HTML pages
// ABOUTME: Tries semantic containers first, then falls back to the largest text block

package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// contentSelectors are tried in order; the first match wins, regardless of
// how much text the fallback might have found.
var contentSelectors = []string{
	"article",
	"main",
	".post-content",
	".entry-content",
	".article-content",
	"#content",
}

// strippedTags are removed from the chosen container before rendering.
const strippedTags = "script, style, iframe, noscript"

// Result holds what could be pulled out of a page. Fields are empty when the
// page yielded nothing; extraction never fails outright. The struct is
// JSON-serializable so it can be cached as-is.
type Result struct {
	Title       string `json:"title"`
	ContentHTML string `json:"content_html"`
	ContentText string `json:"content_text"`
}

// Extract pulls the main content out of an HTML document. Semantic
// containers are preferred; failing those, the div with the most text wins.
// Malformed input produces a zero Result, never an error.
func Extract(htmlContent string) Result {
	var res Result

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return res
	}

	res.Title = strings.TrimSpace(doc.Find("title").First().Text())

	container := findContainer(doc)
	if container == nil || container.Length() == 0 {
		return res
	}

	container.Find(strippedTags).Remove()

	if outer, err := goquery.OuterHtml(container); err == nil {
		res.ContentHTML = outer
	}
	res.ContentText = textContent(container)
	return res
}

// findContainer tries each content selector in order, then the largest-block
// fallback.
func findContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return largestBlock(doc)
}

// largestBlock returns the div with the most text content. Document order
// breaks ties, so repeated runs over the same input pick the same node.
func largestBlock(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestLen := -1
	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		if l := len(s.Text()); l > bestLen {
			best = s
			bestLen = l
		}
	})
	return best
}

// textContent renders a selection as plain text: one space between text
// nodes, whitespace runs collapsed.
func textContent(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

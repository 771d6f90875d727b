// ABOUTME: Content helpers shared by entry parsing and the preview command
// ABOUTME: Detects HTML bodies and converts HTML to Markdown for terminal display

package content

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlTagPattern matches opening tags of the elements feeds actually emit.
var htmlTagPattern = regexp.MustCompile(`<\s*(p|div|span|a|br|img|h[1-6]|ul|ol|li|table|tr|td|th|strong|em|b|i|code|pre|blockquote|article|figure)[^>]*>`)

// IsHTML reports whether a feed entry body looks like HTML rather than
// plain text. Used to route entry content into content_html vs content_text.
func IsHTML(s string) bool {
	if strings.Contains(s, "<!DOCTYPE") || strings.Contains(s, "<html") {
		return true
	}
	return htmlTagPattern.MatchString(s)
}

// ToMarkdown converts HTML to Markdown for terminal rendering. Plain text
// passes through unchanged, as does input the converter cannot handle.
func ToMarkdown(s string) string {
	if s == "" || !IsHTML(s) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}

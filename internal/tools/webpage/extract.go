package webpage

import (
	"html"
	"regexp"
	"strings"
)

var (
	scriptRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	commentRe  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockRe    = regexp.MustCompile(`(?i)</?(p|div|br|h[1-6]|li|tr|td|th|table|section|article)[^>]*>`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)
	multiSpace = regexp.MustCompile(`  +`)
)

// ExtractText reduces an HTML document to plain text: script/style/noscript
// blocks and comments are removed, remaining markup is dropped, entities are
// unescaped, and whitespace collapses so each non-empty phrase lands on its
// own line.
func ExtractText(htmlContent string) string {
	text := scriptRe.ReplaceAllString(htmlContent, "")
	text = styleRe.ReplaceAllString(text, "")
	text = noscriptRe.ReplaceAllString(text, "")
	text = commentRe.ReplaceAllString(text, "")

	// Block-level boundaries become line breaks before the remaining tags
	// are stripped, so adjacent cells and paragraphs don't run together.
	text = blockRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range multiSpace.Split(strings.TrimSpace(line), -1) {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, "\n")
}

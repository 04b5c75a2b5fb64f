package response

import "github.com/russross/blackfriday"

// RenderMarkdown converts a coach reply from markdown to HTML for clients
// that render rich text.
func RenderMarkdown(text string) string {
	return string(blackfriday.MarkdownCommon([]byte(text)))
}

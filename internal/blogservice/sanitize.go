package blogservice

import "regexp"

var (
	blockTagRX  = regexp.MustCompile(`(?is)<\s*(script|style|iframe)[^>]*>.*?<\s*/\s*(script|style|iframe)\s*>`)
	eventAttrRX = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsURLRX     = regexp.MustCompile(`(?i)(href|src)\s*=\s*(["']?)\s*javascript:[^"'\s>]*(["']?)`)
)

// sanitizeMarkdown strips executable HTML from post and comment bodies: script, style and
// iframe blocks, inline event handlers and javascript: links.
func sanitizeMarkdown(markdown string) string {
	s := blockTagRX.ReplaceAllString(markdown, "")
	s = eventAttrRX.ReplaceAllString(s, "")
	return jsURLRX.ReplaceAllString(s, "${1}=${2}#${3}")
}

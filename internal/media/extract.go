// Package media pulls embedded image references out of workflow output text.
package media

import (
	"regexp"
	"strings"
)

var (
	// Custom inline marker the image generator emits, e.g. <IMAGE:http://.../x.png>.
	markerRe = regexp.MustCompile(`<IMAGE:(.*?)>`)

	// Markdown image markup: ![alt](url).
	markdownRe = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)

	// Bare URLs whose path ends in a raster/vector image extension,
	// delimited by whitespace or quoting/angle-bracket characters.
	bareURLRe = regexp.MustCompile(`(?i)https?://[^\s<>"']+\.(?:jpg|jpeg|png|gif|webp|svg)`)
)

// Extract returns the text with every recognized image reference stripped,
// plus an ordered, deduplicated list of the referenced URLs. Marker forms are
// scanned in fixed precedence: <IMAGE:url> first, then markdown images, then
// bare image URLs. The function is idempotent: running it on its own cleaned
// output finds nothing further. Unmatched or partial markers are left as
// literal text.
func Extract(text string) (string, []string) {
	var images []string
	seen := make(map[string]bool)

	record := func(url string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		images = append(images, url)
	}

	// Removing a marker can splice the surrounding text into a fresh match
	// for any of the stages, so the whole pass repeats until a full pass
	// removes nothing.
	for {
		before := text

		for _, m := range markerRe.FindAllStringSubmatch(text, -1) {
			record(m[1])
		}
		text = markerRe.ReplaceAllString(text, "")

		for _, m := range markdownRe.FindAllStringSubmatch(text, -1) {
			record(m[1])
		}
		text = markdownRe.ReplaceAllString(text, "")

		for _, m := range bareURLRe.FindAllString(text, -1) {
			record(m)
		}
		text = bareURLRe.ReplaceAllString(text, "")

		if text == before {
			break
		}
	}

	return strings.TrimSpace(text), images
}

package library

import (
	"html"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	snippetBefore = 20
	snippetRunes  = 80
)

// chapterText returns the visible text of stored chapter content. Markdown
// chapters are stored rendered and plain-text chapters may hold markup of
// their own, so both go through the HTML parser.
func chapterText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// makeSnippet cuts an escaped excerpt around the first case-insensitive
// match of query, with the match wrapped in <mark>. Without a match in the
// text (a title hit) the excerpt is the start of the chapter.
func makeSnippet(content, query string) string {
	text := []rune(chapterText(content))
	q := []rune(query)
	at := indexFold(text, q)
	if at < 0 {
		end := min(len(text), snippetRunes)
		s := html.EscapeString(string(text[:end]))
		if end < len(text) {
			s += "..."
		}
		return s
	}

	start := max(at-snippetBefore, 0)
	end := min(start+snippetRunes, len(text))
	end = max(end, at+len(q))

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(html.EscapeString(string(text[start:at])))
	b.WriteString("<mark>")
	b.WriteString(html.EscapeString(string(text[at : at+len(q)])))
	b.WriteString("</mark>")
	b.WriteString(html.EscapeString(string(text[at+len(q) : end])))
	if end < len(text) {
		b.WriteString("...")
	}
	return b.String()
}

func indexFold(text, q []rune) int {
	if len(q) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(q) <= len(text); i++ {
		for j, r := range q {
			if unicode.ToLower(text[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}

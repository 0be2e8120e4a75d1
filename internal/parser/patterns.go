// Package parser turns plain-text and Markdown manuscripts into novels:
// it detects chapter boundaries, extracts title and author metadata and
// segments the body into ordered chapters.
package parser

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// numerals matches Arabic digits and the CJK numerals used in ordinals.
const numerals = `[0-9一二三四五六七八九十百千万零〇两]+`

// Rule is one chapter-boundary convention.
type Rule struct {
	Name string
	re   *regexp.Regexp
	// title builds the display title from the submatches of re.
	title func(m []string) string
}

func wholeLine(m []string) string { return m[0] }

func lastGroup(m []string) string { return m[len(m)-1] }

// Rules are the recognised boundary conventions in priority order. The first
// rule that matches a line decides its title.
var Rules = []Rule{
	{Name: "markdown-heading", re: regexp.MustCompile(`^#{1,3}\s+(.+)$`), title: lastGroup},
	{Name: "ordinal", re: regexp.MustCompile(`^第\s*` + numerals + `\s*(?:章|回|节|部分|卷).*$`), title: wholeLine},
	{Name: "latin-chapter", re: regexp.MustCompile(`(?i)^chapter\s*\d+.*$`), title: wholeLine},
	{Name: "numbered", re: regexp.MustCompile(`^` + numerals + `[.、]\s*(.+)$`), title: lastGroup},
	{Name: "section-word", re: regexp.MustCompile(`^(?:序章|楔子|前言|后记|尾声|番外).*$`), title: wholeLine},
}

// normalizeLine trims the line and folds full-width digits and Latin letters
// to ASCII. Full-width punctuation is left alone.
func normalizeLine(line string) string {
	return strings.Map(func(r rune) rune {
		p := width.LookupRune(r)
		if p.Kind() == width.EastAsianFullwidth && (unicode.IsDigit(r) || unicode.IsLetter(r)) {
			return p.Narrow()
		}
		return r
	}, strings.TrimSpace(line))
}

// Match reports the first rule matching line and the title it extracts.
// Blank lines never match.
func Match(line string) (Rule, string, bool) {
	norm := normalizeLine(line)
	if norm == "" {
		return Rule{}, "", false
	}
	for _, r := range Rules {
		m := r.re.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(r.title(m))
		if title == "" {
			title = norm
		}
		return r, title, true
	}
	return Rule{}, "", false
}

// Classify reports whether line is a chapter boundary.
func Classify(line string) bool {
	_, _, ok := Match(line)
	return ok
}

// ExtractTitle returns the display title for a boundary line. Lines that are
// not boundaries yield the trimmed line itself.
func ExtractTitle(line string) string {
	if _, title, ok := Match(line); ok {
		return title
	}
	return strings.TrimSpace(line)
}

package markup

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	headingRe = regexp.MustCompile(`^(#{4,})\s+(.+)$`)
	quoteRe   = regexp.MustCompile(`^>\s*(.+)$`)
	ruleRe    = regexp.MustCompile(`^-{3,}$`)
	bulletRe  = regexp.MustCompile(`^[*-]\s+(.+)$`)
	orderedRe = regexp.MustCompile(`^\d+\.\s+(.+)$`)

	codeRe  = regexp.MustCompile("`(.+?)`")
	imageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkRe  = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// Applied in order; doubled delimiters must go before single ones.
	emphasisRules = []struct {
		re  *regexp.Regexp
		tag string
	}{
		{regexp.MustCompile(`\*\*(.+?)\*\*`), "strong"},
		{regexp.MustCompile(`__(.+?)__`), "strong"},
		{regexp.MustCompile(`\*(.+?)\*`), "em"},
		{regexp.MustCompile(`_(.+?)_`), "em"},
		{regexp.MustCompile(`~~(.+?)~~`), "del"},
	}

	placeholderRe = regexp.MustCompile("\x00([0-9]+)\x00")
	emphasisTagRe = regexp.MustCompile(`</?(strong|em|del)>`)
)

// renderInline converts inline syntax in a single line of text.
//
// Code spans, images and links are cut out first and replaced by
// placeholders, so emphasis rules never touch URLs or code. Images are cut
// before links because image syntax contains link syntax.
func renderInline(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")

	var frags []string
	hold := func(fragment string) string {
		frags = append(frags, fragment)
		return "\x00" + strconv.Itoa(len(frags)-1) + "\x00"
	}

	text = codeRe.ReplaceAllStringFunc(text, func(m string) string {
		inner := codeRe.FindStringSubmatch(m)[1]
		return hold("<code>" + html.EscapeString(inner) + "</code>")
	})
	text = imageRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := imageRe.FindStringSubmatch(m)
		src := strings.TrimSpace(sub[2])
		if !safeURL(src, true) {
			return hold(html.EscapeString(m))
		}
		return hold(`<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(sub[1]) +
			`" class="` + imageClass + `">`)
	})
	text = linkRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := linkRe.FindStringSubmatch(m)
		href := strings.TrimSpace(sub[2])
		if !safeURL(href, false) {
			return hold(html.EscapeString(m))
		}
		return hold(`<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">` +
			emphasize(html.EscapeString(sub[1])) + "</a>")
	})

	text = emphasize(html.EscapeString(text))

	// Link text may itself hold an image placeholder, hence the second pass.
	for pass := 0; pass < 2 && strings.Contains(text, "\x00"); pass++ {
		text = placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
			i, err := strconv.Atoi(placeholderRe.FindStringSubmatch(m)[1])
			if err != nil || i >= len(frags) {
				return ""
			}
			return frags[i]
		})
	}
	return text
}

// emphasize applies the emphasis rules to already escaped text. A match
// that would cut across an earlier tag is left as literal text.
func emphasize(escaped string) string {
	for _, rule := range emphasisRules {
		openTag, closeTag := "<"+rule.tag+">", "</"+rule.tag+">"
		escaped = rule.re.ReplaceAllStringFunc(escaped, func(m string) string {
			inner := rule.re.FindStringSubmatch(m)[1]
			if !balancedTags(inner) {
				return m
			}
			return openTag + inner + closeTag
		})
	}
	return escaped
}

// balancedTags reports whether every emphasis tag in s is closed in s, in
// nesting order.
func balancedTags(s string) bool {
	var open []string
	for _, m := range emphasisTagRe.FindAllStringSubmatch(s, -1) {
		if !strings.HasPrefix(m[0], "</") {
			open = append(open, m[1])
			continue
		}
		if len(open) == 0 || open[len(open)-1] != m[1] {
			return false
		}
		open = open[:len(open)-1]
	}
	return len(open) == 0
}

// safeURL rejects script-capable schemes. Inline data URIs are accepted
// only for images.
func safeURL(raw string, image bool) bool {
	u := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	switch {
	case strings.HasPrefix(u, "javascript:"), strings.HasPrefix(u, "vbscript:"):
		return false
	case strings.HasPrefix(u, "data:"):
		return image && strings.HasPrefix(u, "data:image/") && !strings.HasPrefix(u, "data:image/svg")
	}
	return true
}

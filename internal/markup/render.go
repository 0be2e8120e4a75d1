// Package markup renders chapter bodies written in a Markdown subset into
// HTML fragments for the reader.
//
// Rendering is line oriented: block rules (headings, quotes, rules, list
// items) are decided per line, then the line's text goes through the inline
// rules. All user text is HTML-escaped before it is embedded, so the output is
// safe to inject into a page even for untrusted manuscripts.
package markup

import (
	"strconv"
	"strings"
)

// CSS classes expected by the reader front end.
const (
	paragraphClass = "mb-4"
	quoteClass     = "border-l-4 border-primary pl-4 italic my-4"
	ruleClass      = "my-6"
	bulletClass    = "list-disc list-inside my-4"
	orderedClass   = "list-decimal list-inside my-4"
	imageClass     = "max-w-full h-auto mx-auto rounded-lg shadow-md my-4"
)

// DefaultImageCaption is used when an inserted image has no caption.
const DefaultImageCaption = "配图"

type listKind int

const (
	listNone listKind = iota
	listBullet
	listOrdered
)

// Render converts a raw chapter body into an HTML fragment.
//
// Blank lines are dropped, runs of list items are grouped into one list
// container and every other line becomes a paragraph. Render never fails:
// syntax it does not understand is kept as escaped paragraph text. It is
// deterministic but not idempotent, so content must be rendered only once.
func Render(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var b strings.Builder
	open := listNone

	closeList := func() {
		switch open {
		case listBullet:
			b.WriteString("</ul>")
		case listOrdered:
			b.WriteString("</ol>")
		}
		open = listNone
	}
	openList := func(kind listKind) {
		if open == kind {
			return
		}
		closeList()
		switch kind {
		case listBullet:
			b.WriteString(`<ul class="` + bulletClass + `">`)
		case listOrdered:
			b.WriteString(`<ol class="` + orderedClass + `">`)
		}
		open = kind
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			// Blank lines between list items keep the list open.
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			closeList()
			level := len(m[1])
			if level > 6 {
				level = 6
			}
			tag := "h" + strconv.Itoa(level)
			b.WriteString("<" + tag + ">" + renderInline(m[2]) + "</" + tag + ">")
			continue
		}
		if m := quoteRe.FindStringSubmatch(line); m != nil {
			closeList()
			b.WriteString(`<blockquote class="` + quoteClass + `">` + renderInline(m[1]) + "</blockquote>")
			continue
		}
		if ruleRe.MatchString(line) {
			closeList()
			b.WriteString(`<hr class="` + ruleClass + `">`)
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			openList(listBullet)
			b.WriteString("<li>" + renderInline(m[1]) + "</li>")
			continue
		}
		if m := orderedRe.FindStringSubmatch(line); m != nil {
			openList(listOrdered)
			b.WriteString("<li>" + renderInline(m[1]) + "</li>")
			continue
		}

		closeList()
		b.WriteString(`<p class="` + paragraphClass + `">` + renderInline(strings.TrimSpace(line)) + "</p>")
	}
	closeList()

	return b.String()
}

// ImageMarkdown returns the Markdown image line inserted into chapters.
func ImageMarkdown(caption, url string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		caption = DefaultImageCaption
	}
	return "![" + caption + "](" + strings.TrimSpace(url) + ")"
}

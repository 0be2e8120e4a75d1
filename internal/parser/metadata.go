package parser

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	markdownHeaderLines = 10
	textAuthorLines     = 5
	frontMatterDelim    = "---"
)

var (
	authorRe      = regexp.MustCompile(`作者[：:]\s*(.+)`)
	h1Re          = regexp.MustCompile(`^#\s+(.+)$`)
	textTitleRe   = regexp.MustCompile(`^(.+?)(?:\s*作者[：:]\s*(.+))?$`)
	frontMatterRe = regexp.MustCompile(`^(\w+):\s*(.+)$`)
)

// Metadata is what the header of a manuscript says about the novel.
type Metadata struct {
	Title  string
	Author string
	// BodyStart is the first line after a front-matter block, 0 without one.
	BodyStart int
	// AuthorLine is the index of the line the author was read from, or -1.
	AuthorLine int
	// consumed holds header lines that became metadata and must not be
	// segmented into chapters.
	consumed map[int]struct{}
}

func (m *Metadata) consume(i int) {
	if m.consumed == nil {
		m.consumed = make(map[int]struct{})
	}
	m.consumed[i] = struct{}{}
}

// Consumed reports whether line i was turned into metadata.
func (m *Metadata) Consumed(i int) bool {
	_, ok := m.consumed[i]
	return ok
}

// ExtractMarkdownMetadata reads front matter, the title heading and the
// author line from the top of a Markdown manuscript.
//
// Front-matter values win over heading and author-line values. A level-1
// heading is the title only if its text is not itself a chapter marker and
// it comes before the first chapter boundary; such title and author lines
// are consumed so they do not become body text.
func ExtractMarkdownMetadata(lines []string) Metadata {
	md := Metadata{AuthorLine: -1}

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == frontMatterDelim {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == frontMatterDelim {
				applyFrontMatter(&md, lines[1:i])
				md.BodyStart = i + 1
				break
			}
		}
	}

	titleSet := md.Title != ""
	authorSeen := false
	inHeader := true
	limit := min(len(lines), markdownHeaderLines)
	for i := md.BodyStart; i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if m := h1Re.FindStringSubmatch(line); m != nil && inHeader && !titleSet && !Classify(m[1]) {
			md.Title = strings.TrimSpace(m[1])
			titleSet = true
			md.consume(i)
			continue
		}

		if m := authorRe.FindStringSubmatch(line); m != nil && !authorSeen {
			authorSeen = true
			if md.Author == "" {
				md.Author = strings.TrimSpace(m[1])
				md.AuthorLine = i
			}
			if inHeader {
				md.consume(i)
			}
			continue
		}

		if Classify(line) {
			inHeader = false
		}
	}

	return md
}

// applyFrontMatter decodes a key: value block. YAML is tried first; a block
// that is not valid YAML is read line by line. Unknown keys are ignored.
func applyFrontMatter(md *Metadata, block []string) {
	fields := make(map[string]string)

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &doc); err == nil && doc != nil {
		for k, v := range doc {
			if v == nil {
				continue
			}
			fields[strings.ToLower(k)] = fmt.Sprint(v)
		}
	} else {
		for _, line := range block {
			m := frontMatterRe.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			fields[strings.ToLower(m[1])] = m[2]
		}
	}

	if v := unquote(fields["title"]); v != "" {
		md.Title = v
	}
	if v := unquote(fields["author"]); v != "" {
		md.Author = v
	}
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"'`))
}

// ExtractTextMetadata reads title and author from a plain-text manuscript.
// lines must already be trimmed with blank lines removed.
//
// Line 0 is "<title>" optionally followed by an author label on the same
// line. The first of the first five lines carrying an author label sets the
// author.
func ExtractTextMetadata(lines []string) Metadata {
	md := Metadata{AuthorLine: -1}
	if len(lines) == 0 {
		return md
	}

	if m := textTitleRe.FindStringSubmatch(lines[0]); m != nil {
		md.Title = strings.TrimSpace(m[1])
		if m[2] != "" {
			md.Author = strings.TrimSpace(m[2])
			md.AuthorLine = 0
		}
	}

	for i := 0; i < min(textAuthorLines, len(lines)); i++ {
		if m := authorRe.FindStringSubmatch(lines[i]); m != nil {
			md.Author = strings.TrimSpace(m[1])
			md.AuthorLine = i
			break
		}
	}

	return md
}

package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/starford/shujia/internal/markup"
	"github.com/starford/shujia/internal/models"
)

// Sentinels used when a manuscript does not name its title or author.
const (
	UnknownTitle  = "未知小说"
	UnknownAuthor = "未知作者"
)

var leadingNumberRe = regexp.MustCompile(`^\d+[.、\-_\s]*`)

// Parse builds a novel from raw manuscript text.
//
// Plain-text manuscripts fail with ErrNoChapters when nothing but a title
// line is present. Markdown manuscripts without boundaries become a single
// rendered DefaultChapterTitle chapter. Blank input fails with ErrEmptyInput
// for both formats.
func Parse(raw string, format models.SourceFormat) (*models.Novel, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Err: ErrEmptyInput}
	}

	var (
		md       Metadata
		chapters []models.Chapter
	)
	switch format {
	case models.FormatText:
		lines := textLines(raw)
		md = ExtractTextMetadata(lines)
		chapters = Segment(lines, md, TextPolicy)
		if len(chapters) == 0 {
			chapters = textFallback(lines, md)
		}
		if len(chapters) == 0 {
			return nil, &ParseError{Err: ErrNoChapters}
		}
	case models.FormatMarkdown:
		lines := strings.Split(raw, "\n")
		md = ExtractMarkdownMetadata(lines)
		chapters = Segment(lines, md, MarkdownPolicy)
		if len(chapters) == 0 {
			chapters = markdownFallback(raw, lines, md)
		}
	default:
		return nil, &ParseError{Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
	}

	novel := &models.Novel{
		ID:           newID(),
		Title:        md.Title,
		Author:       md.Author,
		Chapters:     chapters,
		CreatedAt:    time.Now().UTC(),
		SourceFormat: format,
	}
	if novel.Title == "" {
		novel.Title = UnknownTitle
	}
	if novel.Author == "" {
		novel.Author = UnknownAuthor
	}
	return novel, nil
}

// ParseFile decodes and parses a manuscript file. The format comes from the
// file extension, and a novel without a detected title is named after the
// file.
func ParseFile(name string, data []byte) (*models.Novel, error) {
	format, err := FormatFromFilename(name)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data)
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	novel, err := Parse(text, format)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Name = name
		}
		return nil, err
	}
	if novel.Title == UnknownTitle {
		novel.Title = TitleFromFilename(name)
	}
	novel.SourceName = name
	return novel, nil
}

// FormatFromFilename maps a .txt or .md file name to its source format.
func FormatFromFilename(name string) (models.SourceFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt":
		return models.FormatText, nil
	case ".md":
		return models.FormatMarkdown, nil
	default:
		return "", &ParseError{Name: name, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)}
	}
}

// TitleFromFilename derives a title from a file name: the extension and any
// leading numbering are removed.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(leadingNumberRe.ReplaceAllString(base, ""))
	if base == "" || base == "." {
		return UnknownTitle
	}
	return base
}

// textLines trims every line and drops blank ones.
func textLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// textFallback keeps everything but the title and author lines as one chapter.
func textFallback(lines []string, md Metadata) []models.Chapter {
	var body []string
	for i := 1; i < len(lines); i++ {
		if i == md.AuthorLine {
			continue
		}
		body = append(body, lines[i])
	}
	content := strings.Join(body, "\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return []models.Chapter{{ID: newID(), Title: DefaultChapterTitle, Content: content}}
}

// markdownFallback renders the body outside front matter and header lines as
// one chapter, or the whole document if nothing else is left.
func markdownFallback(raw string, lines []string, md Metadata) []models.Chapter {
	var body []string
	for i := md.BodyStart; i < len(lines); i++ {
		if !md.Consumed(i) {
			body = append(body, lines[i])
		}
	}
	content := markup.Render(strings.Join(body, "\n"))
	if content == "" {
		content = markup.Render(raw)
	}
	return []models.Chapter{{ID: newID(), Title: DefaultChapterTitle, Content: content}}
}

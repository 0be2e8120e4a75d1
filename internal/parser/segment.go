package parser

import (
	"strings"

	"github.com/google/uuid"

	"github.com/starford/shujia/internal/markup"
	"github.com/starford/shujia/internal/models"
)

// DefaultChapterTitle names the chapter that holds body text outside any
// detected boundary.
const DefaultChapterTitle = "正文"

// Policy captures how the two source formats differ during segmentation.
type Policy struct {
	// ImplicitFirstChapter opens a DefaultChapterTitle chapter for body text
	// found before the first boundary. Without it such text is dropped.
	ImplicitFirstChapter bool
	// Render, if set, converts a chapter's raw content when it is committed.
	// Nil keeps the raw lines for rendering at display time.
	Render func(string) string
}

var (
	// TextPolicy drops pre-boundary text and stores raw content.
	TextPolicy = Policy{}
	// MarkdownPolicy keeps pre-boundary text and renders while segmenting.
	MarkdownPolicy = Policy{ImplicitFirstChapter: true, Render: markup.Render}
)

func newID() string { return uuid.NewString() }

// Segment walks lines once and splits them into chapters at boundary lines.
//
// Lines before md.BodyStart and lines consumed as metadata are skipped. A
// chapter is kept only if its content is not blank, and indexes are assigned
// on commit so they always run 0..n-1.
func Segment(lines []string, md Metadata, p Policy) []models.Chapter {
	var (
		out  []models.Chapter
		cur  *models.Chapter
		body []string
	)

	commit := func() {
		if cur == nil {
			return
		}
		content := strings.Join(body, "\n")
		if strings.TrimSpace(content) != "" {
			if p.Render != nil {
				content = p.Render(content)
			}
			cur.Content = content
			cur.Index = len(out)
			out = append(out, *cur)
		}
		cur, body = nil, nil
	}

	for i := md.BodyStart; i < len(lines); i++ {
		if md.Consumed(i) {
			continue
		}
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			if cur != nil {
				body = append(body, line)
			}
			continue
		}

		if _, title, ok := Match(line); ok {
			commit()
			cur = &models.Chapter{ID: newID(), Title: title}
			continue
		}

		if cur == nil {
			if !p.ImplicitFirstChapter {
				continue
			}
			cur = &models.Chapter{ID: newID(), Title: DefaultChapterTitle}
		}
		body = append(body, line)
	}
	commit()

	return out
}

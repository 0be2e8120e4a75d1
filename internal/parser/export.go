package parser

import (
	"strconv"
	"strings"

	"github.com/starford/shujia/internal/models"
)

// Export writes a novel back out in its source format so that parsing the
// result yields the same title, author and chapter titles.
func Export(n *models.Novel) string {
	if n.SourceFormat == models.FormatMarkdown {
		parts := []string{"# " + n.Title, "作者：" + n.Author, ""}
		for _, ch := range n.Chapters {
			parts = append(parts, strings.Join([]string{"## " + ch.Title, "", ch.Content, ""}, "\n"))
		}
		return strings.Join(parts, "\n")
	}

	parts := []string{n.Title, "作者：" + n.Author, ""}
	for i, ch := range n.Chapters {
		parts = append(parts, strings.Join([]string{textHeading(i, ch.Title), "", ch.Content, ""}, "\n"))
	}
	return strings.Join(parts, "\n")
}

// textHeading returns a boundary line that extracts back to title. Titles
// that carry no chapter marker of their own are numbered.
func textHeading(i int, title string) string {
	if ExtractTitle(title) == title && Classify(title) {
		return title
	}
	return strconv.Itoa(i+1) + ". " + title
}

// DownloadName is the file name offered when a novel is exported.
func DownloadName(n *models.Novel) string {
	return n.Title + n.SourceFormat.Extension()
}

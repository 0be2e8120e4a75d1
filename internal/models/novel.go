// Package models defines the domain types for shujia.
package models

import "time"

// SourceFormat tags the manuscript format a novel was imported from.
type SourceFormat string

// Supported source formats.
const (
	FormatText     SourceFormat = "txt"
	FormatMarkdown SourceFormat = "md"
)

// Extension returns the file extension (with dot) for the format.
func (f SourceFormat) Extension() string {
	return "." + string(f)
}

// Novel is a parsed manuscript together with its reading state.
type Novel struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	Chapters        []Chapter    `json:"chapters"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastReadChapter int          `json:"lastReadChapter"`
	SourceFormat    SourceFormat `json:"fileType"`
	SourceName      string       `json:"sourceName,omitempty"`
	SourceChecksum  string       `json:"sourceChecksum,omitempty"`
}

// Chapter is one titled segment of a novel.
//
// Content holds rendered markup for Markdown-sourced novels and raw
// newline-joined lines for plain-text novels.
type Chapter struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// Summary returns the lightweight listing form of n.
func (n *Novel) Summary() NovelSummary {
	return NovelSummary{
		ID:              n.ID,
		Title:           n.Title,
		Author:          n.Author,
		ChapterCount:    len(n.Chapters),
		LastReadChapter: n.LastReadChapter,
		SourceFormat:    n.SourceFormat,
		CreatedAt:       n.CreatedAt,
	}
}

// NovelSummary is returned by list operations.
type NovelSummary struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	ChapterCount    int          `json:"chapterCount"`
	LastReadChapter int          `json:"lastReadChapter"`
	SourceFormat    SourceFormat `json:"fileType"`
	CreatedAt       time.Time    `json:"createdAt"`
}

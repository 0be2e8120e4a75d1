package models

import "time"

// Bookmark marks a chapter of a novel for later reading.
type Bookmark struct {
	ID           int64     `json:"id"`
	NovelID      string    `json:"novelId"`
	ChapterIndex int       `json:"chapterIndex"`
	CreatedAt    time.Time `json:"createdAt"`
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/shujia/internal/models"
	"github.com/starford/shujia/internal/parser"
)

type chapterOutline struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Runes int    `json:"runes"`
}

type novelOutline struct {
	Title    string           `json:"title"`
	Author   string           `json:"author"`
	Format   string           `json:"fileType"`
	Chapters []chapterOutline `json:"chapters"`
}

func runParse(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("parse: a manuscript file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	novel, err := parser.ParseFile(path, data)
	if err != nil {
		return err
	}
	return writeParsed(os.Stdout, novel, cmd.Bool("export"))
}

func writeParsed(w io.Writer, novel *models.Novel, export bool) error {
	if export {
		_, err := io.WriteString(w, parser.Export(novel))
		return err
	}
	out := novelOutline{
		Title:    novel.Title,
		Author:   novel.Author,
		Format:   string(novel.SourceFormat),
		Chapters: make([]chapterOutline, 0, len(novel.Chapters)),
	}
	for _, ch := range novel.Chapters {
		out.Chapters = append(out.Chapters, chapterOutline{Index: ch.Index, Title: ch.Title, Runes: len([]rune(ch.Content))})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

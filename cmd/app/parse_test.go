package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/starford/shujia/internal/parser"
)

func TestWriteParsed_Outline(t *testing.T) {
	novel, err := parser.ParseFile("weicheng.txt", []byte("围城\n作者：钱钟书\n第一章 开端\n红海早过了。"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeParsed(&buf, novel, false); err != nil {
		t.Fatal(err)
	}
	var out novelOutline
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Title != "围城" || out.Format != "txt" || len(out.Chapters) != 1 || out.Chapters[0].Runes != 6 {
		t.Errorf("outline = %+v", out)
	}
}

func TestWriteParsed_Export(t *testing.T) {
	novel, err := parser.ParseFile("a.md", []byte("# 春\n作者：某\n## 第一章\n内容"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := writeParsed(&buf, novel, true); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# 春\n作者：某\n") {
		t.Errorf("export = %q", buf.String())
	}
}

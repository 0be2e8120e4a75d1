package markup

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseFragment(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div id=\"root\">" + fragment + "</div>"))
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return doc
}

func TestRender_BoldAndItalic(t *testing.T) {
	out := Render("**bold** and *italic*")
	doc := parseFragment(t, out)
	if got := doc.Find("strong").Text(); got != "bold" {
		t.Errorf("strong = %q, want bold", got)
	}
	if got := doc.Find("em").Text(); got != "italic" {
		t.Errorf("em = %q, want italic", got)
	}
	if strings.Contains(out, "*") {
		t.Errorf("stray asterisks in %q", out)
	}
}

func TestRender_UnderscoreEmphasis(t *testing.T) {
	doc := parseFragment(t, Render("__strong__ then _soft_"))
	if got := doc.Find("strong").Text(); got != "strong" {
		t.Errorf("strong = %q", got)
	}
	if got := doc.Find("em").Text(); got != "soft" {
		t.Errorf("em = %q", got)
	}
}

func TestRender_OverlappingEmphasisStaysNested(t *testing.T) {
	cases := map[string]string{
		"*a **b* c**": "<strong>b* c</strong>",
		"**a *b** c*": "<strong>a *b</strong>",
		"**a *b* c**": "<strong>a <em>b</em> c</strong>",
		"*a **b** c*": "<em>a <strong>b</strong> c</em>",
	}
	for in, want := range cases {
		out := Render(in)
		if !strings.Contains(out, want) {
			t.Errorf("Render(%q) = %q, want it to contain %q", in, out, want)
		}
		if !balancedTags(out) {
			t.Errorf("Render(%q) = %q is not well nested", in, out)
		}
	}
}

func TestRender_ImageNotLink(t *testing.T) {
	out := Render("![cap](http://x/y.png)")
	doc := parseFragment(t, out)
	img := doc.Find("img")
	if img.Length() != 1 {
		t.Fatalf("img count = %d in %q", img.Length(), out)
	}
	if src, _ := img.Attr("src"); src != "http://x/y.png" {
		t.Errorf("src = %q", src)
	}
	if alt, _ := img.Attr("alt"); alt != "cap" {
		t.Errorf("alt = %q", alt)
	}
	if doc.Find("a").Length() != 0 {
		t.Errorf("image was also wrapped in an anchor: %q", out)
	}
}

func TestRender_ImageURLUntouchedByEmphasis(t *testing.T) {
	doc := parseFragment(t, Render("![a_b](http://x/some_long_name.png)"))
	if src, _ := doc.Find("img").Attr("src"); src != "http://x/some_long_name.png" {
		t.Errorf("src = %q", src)
	}
	if doc.Find("em").Length() != 0 {
		t.Error("underscores in image syntax produced emphasis")
	}
}

func TestRender_Link(t *testing.T) {
	doc := parseFragment(t, Render("see [the **site**](https://example.com/a?b=1&c=2)"))
	a := doc.Find("a")
	if href, _ := a.Attr("href"); href != "https://example.com/a?b=1&c=2" {
		t.Errorf("href = %q", href)
	}
	if target, _ := a.Attr("target"); target != "_blank" {
		t.Errorf("target = %q", target)
	}
	if got := a.Find("strong").Text(); got != "site" {
		t.Errorf("link strong = %q", got)
	}
}

func TestRender_UnsafeLinkKeptAsText(t *testing.T) {
	out := Render("[click](javascript:alert(1))")
	doc := parseFragment(t, out)
	if doc.Find("a").Length() != 0 {
		t.Errorf("javascript link rendered as anchor: %q", out)
	}
	if !strings.Contains(doc.Find("p").Text(), "[click]") {
		t.Errorf("literal text missing: %q", out)
	}
}

func TestRender_EscapesHTML(t *testing.T) {
	out := Render("<script>alert('x')</script>")
	doc := parseFragment(t, out)
	if doc.Find("script").Length() != 0 {
		t.Fatalf("script element injected: %q", out)
	}
	if got := doc.Find("p").Text(); got != "<script>alert('x')</script>" {
		t.Errorf("paragraph text = %q", got)
	}
}

func TestRender_StrikeAndCode(t *testing.T) {
	doc := parseFragment(t, Render("~~old~~ and `a*b*c`"))
	if got := doc.Find("del").Text(); got != "old" {
		t.Errorf("del = %q", got)
	}
	if got := doc.Find("code").Text(); got != "a*b*c" {
		t.Errorf("code = %q", got)
	}
	if doc.Find("code em").Length() != 0 {
		t.Error("emphasis applied inside code span")
	}
}

func TestRender_Blocks(t *testing.T) {
	in := "#### 小节\n> 引用的话\n---\n普通段落"
	doc := parseFragment(t, Render(in))
	if got := doc.Find("h4").Text(); got != "小节" {
		t.Errorf("h4 = %q", got)
	}
	if got := doc.Find("blockquote").Text(); got != "引用的话" {
		t.Errorf("blockquote = %q", got)
	}
	if doc.Find("hr").Length() != 1 {
		t.Error("missing hr")
	}
	if got := doc.Find("p").Text(); got != "普通段落" {
		t.Errorf("p = %q", got)
	}
}

func TestRender_HeadingLevelCapped(t *testing.T) {
	doc := parseFragment(t, Render("###### six\n######## eight"))
	if doc.Find("h6").Length() != 2 {
		t.Errorf("h6 count = %d, want 2", doc.Find("h6").Length())
	}
}

func TestRender_ContiguousListsOnly(t *testing.T) {
	in := "- a\n\n- b\n中间的段落\n* c\n1. one\n2. two"
	doc := parseFragment(t, Render(in))
	uls := doc.Find("ul")
	if uls.Length() != 2 {
		t.Fatalf("ul count = %d, want 2", uls.Length())
	}
	if uls.First().Find("li").Length() != 2 {
		t.Errorf("first list items = %d, want 2", uls.First().Find("li").Length())
	}
	if uls.Last().Find("li").Length() != 1 {
		t.Errorf("second list items = %d, want 1", uls.Last().Find("li").Length())
	}
	if doc.Find("ol li").Length() != 2 {
		t.Errorf("ordered items = %d, want 2", doc.Find("ol li").Length())
	}
	if doc.Find("ul p, ol p").Length() != 0 {
		t.Error("paragraph merged into a list")
	}
}

func TestRender_BlankLinesDropped(t *testing.T) {
	out := Render("一\n\n\n二\r\n")
	doc := parseFragment(t, out)
	if doc.Find("p").Length() != 2 {
		t.Errorf("p count = %d in %q", doc.Find("p").Length(), out)
	}
	if strings.Contains(out, "<p class=\"mb-4\"></p>") {
		t.Error("empty paragraph rendered")
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(" \n\t\n"); got != "" {
		t.Errorf("Render(blank) = %q", got)
	}
}

func TestRender_Deterministic(t *testing.T) {
	in := "**a** _b_ ![c](d.png) [e](f)\n- g\n> h"
	first := Render(in)
	for i := 0; i < 5; i++ {
		if got := Render(in); got != first {
			t.Fatalf("render %d differs:\n%q\n%q", i, got, first)
		}
	}
}

func TestImageMarkdown_DefaultCaption(t *testing.T) {
	if got := ImageMarkdown("", "/uploads/a.png"); got != "![配图](/uploads/a.png)" {
		t.Errorf("ImageMarkdown = %q", got)
	}
	if got := ImageMarkdown(" 封面 ", "/uploads/a.png"); got != "![封面](/uploads/a.png)" {
		t.Errorf("ImageMarkdown = %q", got)
	}
}

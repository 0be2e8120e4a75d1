package mcpserver

// ManuscriptFormatContract describes the manuscript layouts the parser
// recognises. LLM consumers should follow it when writing manuscripts to
// import.
const ManuscriptFormatContract = `# Shujia Manuscript Format Contract

Manuscripts are UTF-8 text files (GB18030 is also accepted for .txt) in one
of two formats, chosen by file extension.

## Markdown (.md)

` + "```" + `markdown
---
title: 春天的故事            # optional, overrides the heading below
author: 方鸿渐               # optional, overrides the author line below
---

# 春天的故事

作者：方鸿渐

## 第一章 新的开始

Chapter text. **bold**, *italic*, ` + "`" + `code` + "`" + `, [links](https://example.com)
and ![images](/uploads/1700000000000-cover.png) are rendered.

## 第二章 成长

More text.
` + "```" + `

## Plain text (.txt)

` + "```" + `text
围城
作者：钱钟书

第一章 开端
红海早过了。

第二章 上岸
船到了上海。
` + "```" + `

## Rules

1. **Title.** Markdown: front-matter ` + "`" + `title` + "`" + ` or the first level-1 heading
   within the first 10 lines. Plain text: the first non-blank line. Missing
   titles fall back to the file name without leading numbering, then to 未知小说.
2. **Author.** A line containing 作者： (or 作者:) followed by the name.
   Markdown looks in the first 10 lines, plain text in the first 5 non-blank
   lines. Missing authors become 未知作者.
3. **Chapter boundaries** are lines such as:
   - ` + "`" + `第一章 …` + "`" + `, ` + "`" + `第12回` + "`" + `, ` + "`" + `第三节` + "`" + `, ` + "`" + `第二卷` + "`" + `, ` + "`" + `第一部分` + "`" + ` (Chinese or Arabic numerals)
   - ` + "`" + `Chapter 7` + "`" + ` (any case)
   - ` + "`" + `1. 标题` + "`" + `, ` + "`" + `2、标题` + "`" + `
   - ` + "`" + `序章` + "`" + `, ` + "`" + `楔子` + "`" + `, ` + "`" + `前言` + "`" + `, ` + "`" + `后记` + "`" + `, ` + "`" + `尾声` + "`" + `, ` + "`" + `番外…` + "`" + `
   - ` + "`" + `# heading` + "`" + ` to ` + "`" + `### heading` + "`" + ` (the level-1 title heading excepted)
4. **Text before the first boundary** becomes a chapter named 正文 in Markdown
   and is dropped in plain text. A plain-text file with no boundaries at all
   becomes a single 正文 chapter.
5. **Chapters with no content are dropped.** A manuscript that yields no
   chapters is rejected.
6. **Images** are inserted as ` + "`" + `![caption](/uploads/<name>)` + "`" + ` on their own line.
   Upload them with the ` + "`" + `upload_image` + "`" + ` tool first.
7. **No raw HTML.** It is shown as literal text.
`

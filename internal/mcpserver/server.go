// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the shujia library for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/shujia/internal/libraryservice"
	"github.com/starford/shujia/internal/media"
	"github.com/starford/shujia/internal/models"
)

const contractURI = "shujia://manuscript-format"

// Server wraps the MCP server with shujia tools.
type Server struct {
	mcp   *server.MCPServer
	lib   *libraryservice.Service
	media *media.Service
}

// New creates a new MCP server with all shujia tools registered.
func New(lib *libraryservice.Service, mediaSvc *media.Service) *Server {
	s := &Server{lib: lib, media: mediaSvc}

	s.mcp = server.NewMCPServer(
		"Shujia",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_manuscript",
		mcp.WithDescription("Parse manuscript text and report its title, author and chapters without saving it. "+
			"Use this to check how a manuscript will be split before importing it."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Manuscript text")),
		mcp.WithString("format", mcp.Description("Source format when no filename is given"), mcp.Enum("txt", "md")),
		mcp.WithString("filename", mcp.Description("File name; its extension selects the format")),
	), s.parseManuscript)

	s.mcp.AddTool(mcp.NewTool("import_manuscript",
		mcp.WithDescription("Parse a manuscript and save it to the library. A novel with the same title "+
			"and author is replaced. Read the contract first via the get_manuscript_contract tool or the "+
			contractURI+" resource."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name ending in .txt or .md")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Manuscript text following the format contract")),
	), s.importManuscript)

	s.mcp.AddTool(mcp.NewTool("list_novels",
		mcp.WithDescription("List every novel in the library with its chapter count and reading position."),
	), s.listNovels)

	s.mcp.AddTool(mcp.NewTool("read_chapter",
		mcp.WithDescription("Read one chapter of a novel. Chapter indexes start at 0."),
		mcp.WithString("novel_id", mcp.Required(), mcp.Description("Novel id from list_novels")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Chapter index"), mcp.Min(0)),
	), s.readChapter)

	s.mcp.AddTool(mcp.NewTool("render_markup",
		mcp.WithDescription("Render inline manuscript markup (bold, italic, code, links, images, lists) to HTML."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markup to render")),
	), s.renderMarkup)

	s.mcp.AddTool(mcp.NewTool("search_chapters",
		mcp.WithDescription("Full-text search through chapter titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchChapters)

	s.mcp.AddTool(mcp.NewTool("get_manuscript_contract",
		mcp.WithDescription("Returns the manuscript format contract. "+
			"Call this before writing manuscripts to ensure they split into chapters correctly."),
	), s.getManuscriptContract)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Upload a JPEG, PNG, GIF or WebP image from an http(s) URL or a base64 data URI. "+
			"Returns the stored path and a Markdown image reference for a chapter."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:image/...;base64,... URI")),
		mcp.WithString("filename", mcp.Description("Optional original file name")),
		mcp.WithString("caption", mcp.Description("Optional caption for the Markdown reference")),
	), s.uploadImage)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Manuscript Format Contract",
			mcp.WithResourceDescription("Manuscript layouts the parser recognises."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// novelOutline is the tool view of a parsed novel: chapter bodies are
// replaced by their sizes.
type novelOutline struct {
	ID       string           `json:"id,omitempty"`
	Title    string           `json:"title"`
	Author   string           `json:"author"`
	Format   string           `json:"fileType"`
	Replaced bool             `json:"replaced,omitempty"`
	Chapters []chapterOutline `json:"chapters"`
}

type chapterOutline struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Runes int    `json:"runes"`
}

func outline(n *models.Novel) novelOutline {
	out := novelOutline{
		ID:       n.ID,
		Title:    n.Title,
		Author:   n.Author,
		Format:   string(n.SourceFormat),
		Chapters: make([]chapterOutline, 0, len(n.Chapters)),
	}
	for _, ch := range n.Chapters {
		out.Chapters = append(out.Chapters, chapterOutline{
			Index: ch.Index,
			Title: ch.Title,
			Runes: len([]rune(ch.Content)),
		})
	}
	return out
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) parseManuscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := req.GetString("filename", "")
	format := req.GetString("format", "")
	if filename == "" && format == "" {
		return mcp.NewToolResultError("filename or format is required"), nil
	}
	novel, err := s.lib.Preview(ctx, filename, models.SourceFormat(format), content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Preview records carry throwaway ids.
	o := outline(novel)
	o.ID = ""
	return jsonResult(o), nil
}

func (s *Server) importManuscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	novel, replaced, err := s.lib.Import(ctx, filename, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	o := outline(novel)
	o.Replaced = replaced
	return jsonResult(o), nil
}

func (s *Server) listNovels(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.lib.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("library is empty"), nil
	}
	return jsonResult(list), nil
}

func (s *Server) readChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("novel_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view, err := s.lib.Chapter(ctx, id, index)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chapter %d of %s: %v", index, id, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("# %s (%d/%d)\n\n%s", view.Title, view.Index+1, view.Total, view.Content)), nil
}

func (s *Server) renderMarkup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.lib.Render(ctx, content)), nil
}

func (s *Server) searchChapters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.lib.Search(ctx, query, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits), nil
}

func (s *Server) getManuscriptContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ManuscriptFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     ManuscriptFormatContract,
		},
	}, nil
}

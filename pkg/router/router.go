// Package router implements the SourceRouter: it dispatches a
// submission's stored content to the right text-extraction path by
// content type, then feeds the extracted text through a Chunker.
package router

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"

	"github.com/chunklab/tokchunk/pkg/chunker"
	"github.com/chunklab/tokchunk/pkg/chunkerr"
)

// ContentType identifies how a submission's stored content should be
// extracted to text before chunking.
type ContentType string

const (
	ContentTypePDF      ContentType = "pdf"
	ContentTypeDOCX     ContentType = "docx"
	ContentTypeHTML     ContentType = "html"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeText     ContentType = "text"
)

// Parser is the external collaborator that turns stored bytes into
// text. Implementations live outside this module; pkg/router only
// consumes the interface.
type Parser interface {
	ExtractPDFPages(ctx context.Context, path string) ([]string, error)
	ParseDOCX(ctx context.Context, path string) (string, error)
}

// Router dispatches on content type and feeds the result to a Chunker.
type Router struct {
	parser  Parser
	chunker *chunker.Chunker
}

// New builds a Router over the given Parser and Chunker.
func New(parser Parser, c *chunker.Chunker) *Router {
	return &Router{parser: parser, chunker: c}
}

// Route extracts text for the given content type and chunks it,
// returning chunk_index values re-indexed densely across the whole
// result regardless of how many pages or chunking calls produced them.
//
// filePath is only consulted for pdf/docx, where extraction reads from
// storage via Parser. For html/markdown/text, content is taken as-is
// from the submission's stored content.
func (r *Router) Route(ctx context.Context, contentType ContentType, filePath, content string, chunkTokens, overlapTokens int) ([]chunker.Chunk, error) {
	switch contentType {
	case ContentTypePDF:
		return r.routePDF(ctx, filePath, chunkTokens, overlapTokens)
	case ContentTypeDOCX:
		text, err := r.parser.ParseDOCX(ctx, filePath)
		if err != nil {
			return nil, chunkerr.ExtractionFailed(err)
		}
		return r.chunkSingle(ctx, text, nil, chunkTokens, overlapTokens)
	case ContentTypeHTML:
		return r.chunkSingle(ctx, htmlToText(content), nil, chunkTokens, overlapTokens)
	case ContentTypeMarkdown:
		text, err := markdownToText(content)
		if err != nil {
			return nil, chunkerr.ExtractionFailed(err)
		}
		return r.chunkSingle(ctx, text, nil, chunkTokens, overlapTokens)
	case ContentTypeText:
		return r.chunkSingle(ctx, content, nil, chunkTokens, overlapTokens)
	default:
		return nil, chunkerr.UnsupportedContentType(string(contentType))
	}
}

// routePDF chunks each non-blank page independently with page-local
// token offsets, skipping whitespace-only pages entirely (their page
// number never appears in the output), then re-indexes chunk_index
// densely across the concatenated result.
func (r *Router) routePDF(ctx context.Context, filePath string, chunkTokens, overlapTokens int) ([]chunker.Chunk, error) {
	pages, err := r.parser.ExtractPDFPages(ctx, filePath)
	if err != nil {
		return nil, chunkerr.ExtractionFailed(err)
	}

	var all []chunker.Chunk
	for i, pageText := range pages {
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pageNumber := i + 1
		pageChunks, err := r.chunker.Chunk(ctx, pageText, chunkTokens, overlapTokens, &pageNumber)
		if err != nil {
			return nil, err
		}
		all = append(all, pageChunks...)
	}
	reindex(all)
	return all, nil
}

func (r *Router) chunkSingle(ctx context.Context, text string, pageNumber *int, chunkTokens, overlapTokens int) ([]chunker.Chunk, error) {
	chunks, err := r.chunker.Chunk(ctx, text, chunkTokens, overlapTokens, pageNumber)
	if err != nil {
		return nil, err
	}
	reindex(chunks)
	return chunks, nil
}

// reindex renumbers chunk_index densely from 0, in place, after
// concatenation across multiple chunking calls.
func reindex(chunks []chunker.Chunk) {
	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
}

// htmlToText strips tags and returns the concatenated text nodes,
// separated by whitespace.
func htmlToText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}

// markdownToText renders markdown to its plain-text representation by
// parsing it with goldmark and walking the resulting AST for text
// segments, discarding formatting.
func markdownToText(content string) (string, error) {
	src := []byte(content)
	doc := goldmark.New().Parser().Parse(gtext.NewReader(src))

	var sb strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Segment.Value(src))
			sb.WriteString(" ")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

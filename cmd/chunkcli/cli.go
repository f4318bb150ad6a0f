package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jwalton/gchalk"

	"github.com/chunklab/tokchunk/pkg/chunker"
	"github.com/chunklab/tokchunk/pkg/chunkerr"
	"github.com/chunklab/tokchunk/pkg/logctx"
)

// CLI is the chunkcli flag surface, doubling as the shape .chunkcli.yaml
// is parsed into via kong-yaml.
type CLI struct {
	File        string `name:"file" yaml:"file" help:"Input file to chunk (required unless --request_json is given)"`
	ChunkTokens int    `name:"chunk_tokens" yaml:"chunk_tokens" help:"Maximum tokens per chunk" default:"900"`
	Overlap     int    `name:"overlap" yaml:"overlap" help:"Token overlap between chunks" default:"200"`
	IsPDF       bool   `name:"is_pdf" yaml:"is_pdf" help:"Treat --file as a PDF (form-feed-delimited page stand-in)"`
	Out         string `name:"out" yaml:"out" help:"Output file for the chunk JSON array (required unless --request_json is given)"`
	RequestJSON string `name:"request_json" yaml:"request_json" help:"Path to a JSON request body to validate instead of chunking --file (demonstrates legacy-kwarg rejection)"`
	Verbose     bool   `name:"verbose" yaml:"verbose" help:"Print a colored summary to stderr" short:"v"`
}

// Run executes the chunking command.
func (c *CLI) Run() error {
	ctx := logctx.WithLogger(context.Background(), logctx.Nop())

	if c.RequestJSON != "" {
		return runLegacyValidation(c.RequestJSON)
	}

	if c.File == "" || c.Out == "" {
		return chunkerr.InvalidConfig("--file and --out are required unless --request_json is given")
	}

	content, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.File, err)
	}

	ch := chunker.New()
	chunks, err := chunkInput(ctx, ch, string(content), c.IsPDF, c.ChunkTokens, c.Overlap)
	if err != nil {
		return err
	}

	out := make([]map[string]any, len(chunks))
	for i, ck := range chunks {
		out[i] = flatten(ck)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling chunks: %w", err)
	}
	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.Out, err)
	}

	if c.Verbose {
		printSummary(chunks, c.Out)
	}
	return nil
}

// chunkInput dispatches --is_pdf to the form-feed page splitter stand-in,
// otherwise chunks the content as a single unpaginated document.
func chunkInput(ctx context.Context, ch *chunker.Chunker, content string, isPDF bool, chunkTokens, overlapTokens int) ([]chunker.Chunk, error) {
	if !isPDF {
		return ch.Chunk(ctx, content, chunkTokens, overlapTokens, nil)
	}

	pages := splitFormFeedPages(content)
	var all []chunker.Chunk
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		pageNumber := i + 1
		pageChunks, err := ch.Chunk(ctx, page, chunkTokens, overlapTokens, &pageNumber)
		if err != nil {
			return nil, err
		}
		all = append(all, pageChunks...)
	}
	for i := range all {
		all[i].ChunkIndex = i
	}
	return all, nil
}

// flatten mirrors a Chunk's key fields outside metadata, per the CLI's
// output contract, alongside the full metadata object.
func flatten(c chunker.Chunk) map[string]any {
	return map[string]any{
		"chunk_index": c.ChunkIndex,
		"text":        c.Text,
		"token_count": c.TokenCount,
		"start_token": c.Metadata.StartToken,
		"end_token":   c.Metadata.EndToken,
		"page_number": c.Metadata.PageNumber,
		"metadata":    c.Metadata,
	}
}

func printSummary(chunks []chunker.Chunk, outPath string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", gchalk.Bold("chunks written to"), gchalk.Green(outPath))
	fmt.Fprintf(os.Stderr, "%s %d\n", gchalk.Bold("chunk count:"), len(chunks))
	oversized := 0
	for _, c := range chunks {
		if c.Metadata.OversizedSplit {
			oversized++
		}
	}
	if oversized > 0 {
		fmt.Fprintf(os.Stderr, "%s %d\n", gchalk.WithYellow().Paint("oversized splits:"), oversized)
	}
}

// runLegacyValidation exercises the API request shape's compatibility
// surface: a request body may carry the current chunk_tokens/
// overlap_tokens keys, or the legacy character-based chunk_size/overlap
// keys. The legacy keys are rejected outright with InvalidConfig rather
// than silently reinterpreted, since they name a character budget, not a
// token one, and treating them as synonyms produced chunk sizes an order
// of magnitude off from what the caller intended.
func runLegacyValidation(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var req map[string]any
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if _, hasLegacySize := req["chunk_size"]; hasLegacySize {
		return chunkerr.InvalidConfig("legacy key %q is no longer accepted; use chunk_tokens", "chunk_size")
	}
	if _, hasLegacyOverlap := req["overlap"]; hasLegacyOverlap {
		return chunkerr.InvalidConfig("legacy key %q is no longer accepted; use overlap_tokens", "overlap")
	}

	fmt.Println("request accepted")
	return nil
}

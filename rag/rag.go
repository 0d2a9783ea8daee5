package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/llmcache/completion"
)

// ErrNoChunks indicates a search produced no usable context.
var ErrNoChunks = errors.New("rag: no context chunks")

// Chunk is one ranked piece of document context.
type Chunk struct {
	// Text is the chunk's content.
	Text string `json:"text"`

	// Source identifies the originating document.
	Source string `json:"source"`

	// Page is the 1-based page number within the source.
	Page int `json:"page"`
}

// Searcher retrieves the n most relevant chunks for a query.
//
// Contract:
// - Ordering: chunks are returned most-relevant first.
// - Concurrency: implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]Chunk, error)
}

// JoinContext renders chunks into a single context block, each chunk
// labeled with its source and page.
func JoinContext(chunks []Chunk) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%s, page %d]\n%s", c.Source, c.Page, c.Text)
	}
	return b.String()
}

// ContextMessages builds the message payload for a context-grounded
// question: a system instruction, the retrieved context, and the
// user's query.
func ContextMessages(chunks []Chunk, query string) ([]completion.Message, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}
	return []completion.Message{
		{
			Role:    completion.RoleSystem,
			Content: "Answer the question using only the provided context. Cite the source and page for each claim.",
		},
		{
			Role:    completion.RoleUser,
			Content: "Context:\n" + JoinContext(chunks),
		},
		{
			Role:    completion.RoleUser,
			Content: query,
		},
	}, nil
}

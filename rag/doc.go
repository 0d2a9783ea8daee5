// Package rag defines the retrieval surface consumed when grounding
// completions in document context.
//
// Retrieval itself (chunking, embedding, similarity search) lives
// behind the Searcher interface; this package only shapes retrieved
// chunks into completion messages.
package rag

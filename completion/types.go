package completion

import (
	"context"
	"encoding/json"
)

// Message roles accepted by chat completion requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a chat conversation. Message order is
// semantically significant and is preserved through key derivation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat describes a JSON schema the completion output must
// conform to. Supplying a ResponseFormat selects the structured call
// variant and the structured cache namespace.
type ResponseFormat struct {
	// Name identifies the schema to the provider.
	Name string `json:"name"`

	// Schema is the JSON-schema document as a generic mapping.
	Schema map[string]any `json:"schema"`

	// Strict requests provider-side strict schema adherence.
	Strict bool `json:"strict"`
}

// Request is an immutable description of a chat completion call.
type Request struct {
	// Model is the provider model identifier, e.g. "gpt-4o-mini".
	Model string

	// Messages is the ordered conversation history.
	Messages []Message

	// ResponseFormat, when non-nil, makes this a structured request.
	ResponseFormat *ResponseFormat

	// Extra carries additional provider parameters (temperature,
	// max_tokens, ...) passed through verbatim and folded into the
	// cache key.
	Extra map[string]any
}

// Structured reports whether the request asks for schema-validated output.
func (r Request) Structured() bool {
	return r.ResponseFormat != nil
}

// Result is the polymorphic outcome of a completion call. The two
// variants are *Completion (unstructured) and *ParsedCompletion
// (structured). The variant is selected by the request, never inferred
// from payload shape.
type Result interface {
	resultVariant()
}

// Choice is one unstructured completion alternative.
type Choice struct {
	Content string `json:"content"`
}

// Completion is the unstructured result variant.
type Completion struct {
	ID      string   `json:"id,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

func (*Completion) resultVariant() {}

// ParsedChoice is one structured completion alternative. When Refusal
// is non-empty the provider declined to produce parsed content and
// Parsed is absent.
type ParsedChoice struct {
	Content string          `json:"content"`
	Refusal string          `json:"refusal,omitempty"`
	Parsed  json.RawMessage `json:"parsed,omitempty"`
}

// ParsedCompletion is the structured result variant.
type ParsedCompletion struct {
	ID      string         `json:"id,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []ParsedChoice `json:"choices"`
}

func (*ParsedCompletion) resultVariant() {}

// Compile-time variant checks.
var (
	_ Result = (*Completion)(nil)
	_ Result = (*ParsedCompletion)(nil)
)

// Caller executes a chat completion against an upstream provider.
//
// Contract:
// - structured selects the call variant; when true the returned Result
//   must be a *ParsedCompletion, otherwise a *Completion.
// - Errors: provider failures are returned as-is; the gateway wraps
//   them after its retry policy is exhausted.
// - Concurrency: implementations must be safe for concurrent use.
type Caller interface {
	Call(ctx context.Context, structured bool, req Request) (Result, error)
}

// Pinger is implemented by callers that can verify upstream
// connectivity. Used by the gateway's health surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

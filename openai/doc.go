// Package openai adapts the OpenAI SDK to the completion.Caller
// contract, covering both the plain and the schema-constrained chat
// completion variants.
package openai

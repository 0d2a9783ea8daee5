// Package llmcache wires the default stack together: an OpenAI caller,
// a disk-backed store, and the caching completion gateway.
//
// Callers needing a different provider, store, or policy should
// construct completion.New directly with their own options.
package llmcache

import (
	"github.com/jonwraymond/llmcache/cache"
	"github.com/jonwraymond/llmcache/completion"
	"github.com/jonwraymond/llmcache/openai"
)

// New creates a gateway backed by the OpenAI API and a disk store at
// cache.DefaultDir. Options are applied after the defaults, so
// WithStore, WithRetry, and the rest override them.
func New(cfg openai.Config, opts ...completion.Option) (*completion.Gateway, error) {
	caller, err := openai.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	store, err := cache.NewDiskStore(cache.DefaultDir)
	if err != nil {
		return nil, err
	}

	defaults := []completion.Option{
		completion.WithCaller(caller),
		completion.WithStore(store),
	}
	return completion.New(append(defaults, opts...)...)
}

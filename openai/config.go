package openai

import (
	"fmt"

	"github.com/openai/openai-go/v2/option"

	"github.com/jonwraymond/llmcache/secret"
)

// Config holds connection settings for the OpenAI client. Values may
// reference environment variables with ${VAR} syntax; references are
// resolved strictly, so a missing variable is an error rather than an
// empty credential.
type Config struct {
	// APIKey authenticates requests, e.g. "${OPENAI_API_KEY}".
	APIKey string

	// BaseURL overrides the API endpoint. Empty uses the default.
	BaseURL string

	// Organization is the optional OpenAI organization ID.
	Organization string
}

// options resolves the config into client request options.
func (c Config) options() ([]option.RequestOption, error) {
	var opts []option.RequestOption

	if c.APIKey != "" {
		key, err := secret.ExpandEnvStrict(c.APIKey)
		if err != nil {
			return nil, fmt.Errorf("openai: resolve api key: %w", err)
		}
		opts = append(opts, option.WithAPIKey(key))
	}
	if c.BaseURL != "" {
		url, err := secret.ExpandEnvStrict(c.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("openai: resolve base url: %w", err)
		}
		opts = append(opts, option.WithBaseURL(url))
	}
	if c.Organization != "" {
		org, err := secret.ExpandEnvStrict(c.Organization)
		if err != nil {
			return nil, fmt.Errorf("openai: resolve organization: %w", err)
		}
		opts = append(opts, option.WithOrganization(org))
	}

	return opts, nil
}

package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openaiapi "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/jonwraymond/llmcache/completion"
)

// Client executes chat completions against the OpenAI API. It is safe
// for concurrent use.
type Client struct {
	api openaiapi.Client
}

// NewClient creates a Client from the given config.
func NewClient(cfg Config) (*Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	return &Client{api: openaiapi.NewClient(opts...)}, nil
}

var _ completion.Caller = (*Client)(nil)
var _ completion.Pinger = (*Client)(nil)

// Call executes the request, selecting the structured variant when
// structured is true. Provider errors are returned unwrapped; the
// gateway's retry policy decides what to do with them.
func (c *Client) Call(ctx context.Context, structured bool, req completion.Request) (completion.Result, error) {
	params, extra, err := buildParams(structured, req)
	if err != nil {
		return nil, err
	}

	var opts []option.RequestOption
	for k, v := range extra {
		opts = append(opts, option.WithJSONSet(k, v))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, err
	}

	if structured {
		return toParsed(resp), nil
	}
	return toCompletion(resp), nil
}

// Ping verifies API connectivity and credentials by listing models.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.Models.List(ctx)
	return err
}

// buildParams maps a request onto the SDK's parameter types. Extra
// params are returned separately for injection into the request body,
// since the SDK has no generic passthrough field.
func buildParams(structured bool, req completion.Request) (openaiapi.ChatCompletionNewParams, map[string]any, error) {
	params := openaiapi.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
	}

	for _, m := range req.Messages {
		switch m.Role {
		case completion.RoleSystem:
			params.Messages = append(params.Messages, openaiapi.SystemMessage(m.Content))
		case completion.RoleUser:
			params.Messages = append(params.Messages, openaiapi.UserMessage(m.Content))
		case completion.RoleAssistant:
			params.Messages = append(params.Messages, openaiapi.AssistantMessage(m.Content))
		default:
			return params, nil, fmt.Errorf("openai: unknown message role %q", m.Role)
		}
	}

	if structured {
		params.ResponseFormat = openaiapi.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.ResponseFormat.Name,
					Schema: req.ResponseFormat.Schema,
					Strict: openaiapi.Bool(req.ResponseFormat.Strict),
				},
			},
		}
	}

	return params, req.Extra, nil
}

func toCompletion(resp *openaiapi.ChatCompletion) *completion.Completion {
	out := &completion.Completion{
		ID:    resp.ID,
		Model: resp.Model,
	}
	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, completion.Choice{Content: c.Message.Content})
	}
	return out
}

func toParsed(resp *openaiapi.ChatCompletion) *completion.ParsedCompletion {
	out := &completion.ParsedCompletion{
		ID:    resp.ID,
		Model: resp.Model,
	}
	for _, c := range resp.Choices {
		choice := completion.ParsedChoice{
			Content: c.Message.Content,
			Refusal: c.Message.Refusal,
		}
		if c.Message.Refusal == "" {
			choice.Parsed = json.RawMessage(c.Message.Content)
		}
		out.Choices = append(out.Choices, choice)
	}
	return out
}

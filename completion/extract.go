package completion

import (
	"encoding/json"
	"fmt"
)

// Extract normalizes a result into plain content: the first choice's
// text for an unstructured result, the first choice's parsed document
// for a structured one.
func Extract(result Result) (any, error) {
	switch r := result.(type) {
	case *Completion:
		if len(r.Choices) == 0 {
			return nil, fmt.Errorf("%w: no choices", ErrUnsupportedResult)
		}
		return r.Choices[0].Content, nil
	case *ParsedCompletion:
		if len(r.Choices) == 0 {
			return nil, fmt.Errorf("%w: no choices", ErrUnsupportedResult)
		}
		choice := r.Choices[0]
		if choice.Refusal != "" {
			return nil, fmt.Errorf("%w: choice refused: %s", ErrUnsupportedResult, choice.Refusal)
		}
		var parsed any
		if err := json.Unmarshal(choice.Parsed, &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedResult, result)
	}
}

// ExtractText returns the first choice's text content of an
// unstructured result.
func ExtractText(result Result) (string, error) {
	c, ok := result.(*Completion)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrUnsupportedResult, result)
	}
	if len(c.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrUnsupportedResult)
	}
	return c.Choices[0].Content, nil
}

// ExtractParsed unmarshals the first choice's parsed document of a
// structured result into v.
func ExtractParsed(result Result, v any) error {
	pc, ok := result.(*ParsedCompletion)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedResult, result)
	}
	if len(pc.Choices) == 0 {
		return fmt.Errorf("%w: no choices", ErrUnsupportedResult)
	}
	choice := pc.Choices[0]
	if choice.Refusal != "" {
		return fmt.Errorf("%w: choice refused: %s", ErrUnsupportedResult, choice.Refusal)
	}
	if err := json.Unmarshal(choice.Parsed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

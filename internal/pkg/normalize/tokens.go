package normalize

import (
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// ErrUnknownModel is returned when no tokenizer encoding exists for a model
// identifier.
var ErrUnknownModel = errors.New("no tokenizer encoding for model")

// CountTokens returns the number of tokens the model's tokenizer produces
// for the text.
func CountTokens(text, model string) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// countTokens is indirected so truncation tests can count without the
// tokenizer's model data.
var countTokens = CountTokens

// TruncateToTokenBudget cuts text down to a maxTokens-character budget when
// its token count reaches maxTokens. A token never spans less than one byte,
// so inputs shorter than the budget skip the tokenizer entirely.
func TruncateToTokenBudget(text, model string, maxTokens int) (string, error) {
	if len(text) < maxTokens {
		return text, nil
	}

	tokens, err := countTokens(text, model)
	if err != nil {
		return "", err
	}
	if tokens < maxTokens {
		return text, nil
	}

	return clipRunes(text, maxTokens), nil
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

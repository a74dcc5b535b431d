// Package tokens estimates how much of a model's context a rendered bundle uses.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

type encoderEntry struct {
	load func() (*tiktoken.Tiktoken, error)
}

// encoders maps a model name to its *encoderEntry.
var encoders sync.Map

var newEncoder = func(model string) (*tiktoken.Tiktoken, error) {
	if tkm, err := tiktoken.EncodingForModel(model); err == nil {
		return tkm, nil
	}
	return tiktoken.GetEncoding(DefaultEncoding)
}

// Encoder returns the tiktoken encoder for model, falling back to
// cl100k_base for models tiktoken does not know. Each model is loaded once;
// a failed load is forgotten so the next call tries again.
func Encoder(model string) (*tiktoken.Tiktoken, error) {
	value, ok := encoders.Load(model)
	if !ok {
		value, _ = encoders.LoadOrStore(model, &encoderEntry{load: sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
			return newEncoder(model)
		})})
	}
	entry := value.(*encoderEntry)
	tkm, err := entry.load()
	if err != nil {
		encoders.CompareAndDelete(model, entry)
		return nil, err
	}
	return tkm, nil
}

// Count tokenizes text with the encoder for model.
func Count(text, model string) (int, error) {
	tkm, err := Encoder(model)
	if err != nil {
		return 0, err
	}
	return len(tkm.Encode(text, nil, nil)), nil
}

// Estimate counts tokens when an encoder is available and otherwise
// assumes four characters per token. The second result reports which was used.
func Estimate(text, model string) (int, bool) {
	if n, err := Count(text, model); err == nil {
		return n, true
	}
	return Approximate(text), false
}

// Approximate is the four-characters-per-token rule of thumb.
func Approximate(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}

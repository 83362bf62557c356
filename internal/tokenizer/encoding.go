package tokenizer

import (
	"errors"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var errNilEncoding = errors.New("tokenizer encoding is not initialized")

// encodingCache keeps parsed BPE tables so repeated tool calls reuse them.
var encodingCache sync.Map

// encodingCounter counts tokens with one tiktoken encoding.
type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

// CountString ignores special tokens so literal "<|endoftext|>" names count as plain text.
func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoding
	}
	return len(counter.encoding.EncodeOrdinary(input)), nil
}

func cachedEncoding(key string, load func() (*tiktoken.Tiktoken, error)) (*tiktoken.Tiktoken, error) {
	if cached, found := encodingCache.Load(key); found {
		return cached.(*tiktoken.Tiktoken), nil
	}
	encoding, loadErr := load()
	if loadErr != nil {
		return nil, loadErr
	}
	if encoding == nil {
		return nil, errNilEncoding
	}
	actual, _ := encodingCache.LoadOrStore(key, encoding)
	return actual.(*tiktoken.Tiktoken), nil
}

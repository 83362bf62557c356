// Package clipboard copies rendered trees to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable reports a platform without clipboard support.
var ErrUnavailable = errors.New("clipboard is not available on this system")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard Service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if writeError := clipboard.WriteAll(text); writeError != nil {
		return fmt.Errorf("copy to clipboard: %w", writeError)
	}
	return nil
}

// CopierFunc adapts a function into a Copier.
type CopierFunc func(text string) error

// Copy invokes the underlying function.
func (copier CopierFunc) Copy(text string) error {
	return copier(text)
}

var (
	_ Copier = (*Service)(nil)
	_ Copier = CopierFunc(nil)
)

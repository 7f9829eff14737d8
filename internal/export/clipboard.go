package export

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when no system clipboard can be used.
var ErrClipboardUnavailable = errors.New("system clipboard is not available")

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// TextSource produces clipboard text.
type TextSource interface {
	ClipboardText() (string, error)
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// Copy renders src and writes it to cb.
func Copy(cb Clipboard, src TextSource) error {
	text, err := src.ClipboardText()
	if err != nil {
		return err
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

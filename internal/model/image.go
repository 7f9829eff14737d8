package model

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxImageBytes caps the size of a wall photo accepted for analysis.
const MaxImageBytes = 20 << 20

var (
	// ErrEmptyImage is returned when an image payload has no bytes.
	ErrEmptyImage = errors.New("image is empty")
	// ErrNotImage is returned when the payload's media type is not image/*.
	ErrNotImage = errors.New("payload is not an image")
	// ErrImageTooLarge is returned when a payload exceeds MaxImageBytes.
	ErrImageTooLarge = errors.New("image too large")
	// ErrInvalidEncoding is returned when a base64 or data: URI payload cannot be decoded.
	ErrInvalidEncoding = errors.New("image is not valid base64")
)

// Image is a still photo to analyse: raw bytes plus declared media type.
type Image struct {
	MediaType string
	Data      []byte
}

// Validate checks that the image is non-empty, bounded and declared as image/*.
func (img Image) Validate() error {
	if len(img.Data) == 0 {
		return ErrEmptyImage
	}
	if len(img.Data) > MaxImageBytes {
		return fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(img.Data))
	}
	if !strings.HasPrefix(img.MediaType, "image/") {
		return fmt.Errorf("%w: %q", ErrNotImage, img.MediaType)
	}
	return nil
}

// Base64 returns the image bytes in standard base64.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URI.
func (img Image) DataURL() string {
	return "data:" + img.MediaType + ";base64," + img.Base64()
}

// NewImage builds an Image, picking the declared media type when present and
// sniffing the bytes otherwise.
func NewImage(data []byte, declared string) (Image, error) {
	img := Image{Data: data, MediaType: pickMediaType(declared, data)}
	if err := img.Validate(); err != nil {
		return Image{}, err
	}
	return img, nil
}

// ReadImage reads a photo from r. See NewImage for media type handling.
func ReadImage(r io.Reader, declared string) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	return NewImage(data, declared)
}

// ImageFromBase64 decodes plain base64 or a data: URI. A media type carried by
// the data URI is used when declared is empty.
func ImageFromBase64(s, declared string) (Image, error) {
	s = strings.TrimSpace(s)
	var hint string
	if strings.HasPrefix(s, "data:") {
		if idx := strings.IndexByte(s, ','); idx > 0 {
			meta := s[len("data:"):idx]
			if semi := strings.IndexByte(meta, ';'); semi >= 0 {
				hint = meta[:semi]
			} else {
				hint = meta
			}
			s = s[idx+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		alt, altErr := base64.URLEncoding.DecodeString(s)
		if altErr != nil {
			return Image{}, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
		}
		data = alt
	}

	if strings.TrimSpace(declared) == "" {
		declared = hint
	}
	return NewImage(data, declared)
}

func pickMediaType(declared string, data []byte) string {
	if d := strings.TrimSpace(declared); d != "" {
		// Drop parameters such as "; charset=".
		if semi := strings.IndexByte(d, ';'); semi >= 0 {
			d = strings.TrimSpace(d[:semi])
		}
		return strings.ToLower(d)
	}
	if len(data) == 0 {
		return ""
	}
	return http.DetectContentType(data)
}

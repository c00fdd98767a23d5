// Package attachment turns files on local storage into model input.
package attachment

import (
	"encoding/base64"
	"fmt"
	"os"

	apperrors "gemini-gateway/internal/common/errors"
)

// DefaultMediaType is used when the caller has no better hint.
const DefaultMediaType = "application/octet-stream"

// Attachment is encoded non-text content sent alongside a prompt.
type Attachment struct {
	MediaType string `json:"mimeType"`
	Payload   string `json:"data"` // base64, standard encoding
}

// FromFile reads path in full and returns it as a base64 payload paired with
// mediaType. The file is left untouched.
func FromFile(path, mediaType string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewFileReadFailedError(path, err)
	}
	return FromBytes(data, mediaType), nil
}

// FromBytes encodes data directly.
func FromBytes(data []byte, mediaType string) *Attachment {
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	return &Attachment{
		MediaType: mediaType,
		Payload:   base64.StdEncoding.EncodeToString(data),
	}
}

// Bytes decodes the payload.
func (a *Attachment) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s attachment: %w", a.MediaType, err)
	}
	return data, nil
}

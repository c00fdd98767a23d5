// internal/handlers/generate-from-file/modality.go
package generatefromfile

import (
	"mime"
	"path/filepath"
	"strings"

	"gemini-gateway/internal/models"
)

// UnexpectedFieldMessage rejects requests carrying several files under the
// modality's field.
const UnexpectedFieldMessage = "Unexpected field"

// Modality describes one file endpoint: the multipart field it reads, the
// instruction used when no prompt is sent and how the media type is chosen.
type Modality struct {
	Kind               models.Modality
	Endpoint           string
	Field              string
	DefaultPrompt      string
	MissingFileMessage string

	// FallbackMediaType is sent when the upload does not name a usable type.
	FallbackMediaType string
	// MediaTypePrefix, when set, restricts accepted upload types (e.g. "image/").
	MediaTypePrefix string
}

var (
	Image = Modality{
		Kind:               models.ModalityImage,
		Endpoint:           "generate-from-image",
		Field:              "image",
		DefaultPrompt:      "Describe the image",
		MissingFileMessage: "Image file is required",
		FallbackMediaType:  "image/png",
		MediaTypePrefix:    "image/",
	}

	Document = Modality{
		Kind:               models.ModalityDocument,
		Endpoint:           "generate-from-document",
		Field:              "document",
		DefaultPrompt:      "Summarize the document",
		MissingFileMessage: "Document file is required",
		FallbackMediaType:  "application/pdf",
	}

	Audio = Modality{
		Kind:               models.ModalityAudio,
		Endpoint:           "generate-from-audio",
		Field:              "audio",
		DefaultPrompt:      "Transcribe the audio",
		MissingFileMessage: "Audio file is required",
		FallbackMediaType:  "audio/mpeg",
	}
)

// Modalities lists every file endpoint in routing order.
func Modalities() []Modality {
	return []Modality{Image, Document, Audio}
}

// Prompt returns the caller's prompt or the modality default.
func (m Modality) Prompt(prompt string) string {
	if prompt == "" {
		return m.DefaultPrompt
	}
	return prompt
}

// MediaType resolves the type sent with the attachment from the part's
// Content-Type header, then the file extension, then the modality fallback.
func (m Modality) MediaType(contentType, fileName string) string {
	mediaType := baseType(contentType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt := baseType(mime.TypeByExtension(filepath.Ext(fileName))); byExt != "" {
			mediaType = byExt
		}
	}

	if mediaType == "" {
		return m.FallbackMediaType
	}
	if m.MediaTypePrefix != "" && !strings.HasPrefix(mediaType, m.MediaTypePrefix) {
		return m.FallbackMediaType
	}
	return mediaType
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}

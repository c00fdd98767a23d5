// internal/models/generation.go
package models

// Modality is the category of input content.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityImage    Modality = "image"
	ModalityDocument Modality = "document"
	ModalityAudio    Modality = "audio"
)

// GenerationResult is the success body of every generation endpoint.
type GenerationResult struct {
	Output string `json:"output"`
}

// ErrorResult is the failure body of every generation endpoint.
type ErrorResult struct {
	Error string `json:"error"`
}

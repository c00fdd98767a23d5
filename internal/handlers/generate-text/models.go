// internal/handlers/generate-text/models.go
package generatetext

type Input struct {
	Prompt string `json:"prompt"`
}

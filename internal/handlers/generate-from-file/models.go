// internal/handlers/generate-from-file/models.go
package generatefromfile

import "gemini-gateway/internal/common/attachment"

// Input is one file generation request after the upload has been stored.
type Input struct {
	Prompt     string
	Attachment *attachment.Attachment
}

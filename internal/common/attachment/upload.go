package attachment

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	apperrors "gemini-gateway/internal/common/errors"
)

// ErrNoFile is returned by SaveUpload when the request carries no file under
// the requested field, including requests that are not multipart at all.
var ErrNoFile = errors.New("no file uploaded")

// ErrTooManyFiles is returned when more than one file is sent under the
// requested field.
var ErrTooManyFiles = errors.New("more than one file uploaded")

// Upload is a request-scoped file on local disk. Release must be called on
// every exit path; it is safe to call more than once.
type Upload struct {
	Path        string
	FileName    string
	ContentType string
	Size        int64

	form    *multipart.Form
	once    sync.Once
	release error
}

// SaveUpload parses r as multipart/form-data (holding at most maxMemory bytes
// in memory) and copies the file under field into dir with a unique name.
func SaveUpload(r *http.Request, field, dir string, maxMemory int64) (*Upload, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, ErrNoFile
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.NewPayloadTooLargeError(maxErr.Limit)
		}
		return nil, apperrors.NewInvalidRequestBodyError(err)
	}

	if len(r.MultipartForm.File[field]) > 1 {
		cleanupForm(r.MultipartForm)
		return nil, ErrTooManyFiles
	}

	src, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			cleanupForm(r.MultipartForm)
			return nil, ErrNoFile
		}
		cleanupForm(r.MultipartForm)
		return nil, apperrors.NewUploadFailedError(err)
	}
	defer src.Close()

	upload, err := store(src, dir)
	if err != nil {
		cleanupForm(r.MultipartForm)
		return nil, apperrors.NewUploadFailedError(err)
	}
	upload.FileName = header.Filename
	upload.ContentType = header.Header.Get("Content-Type")
	upload.form = r.MultipartForm
	return upload, nil
}

func store(src io.Reader, dir string) (*Upload, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString())
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	n, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload file: %w", copyErr)
	}

	return &Upload{Path: path, Size: n}, nil
}

// Attachment reads the stored file through FromFile.
func (u *Upload) Attachment(mediaType string) (*Attachment, error) {
	return FromFile(u.Path, mediaType)
}

// Release removes the stored file and any multipart spill files.
func (u *Upload) Release() error {
	u.once.Do(func() {
		if err := os.Remove(u.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.release = err
		}
		if err := cleanupForm(u.form); err != nil && u.release == nil {
			u.release = err
		}
	})
	return u.release
}

func cleanupForm(form *multipart.Form) error {
	if form == nil {
		return nil
	}
	return form.RemoveAll()
}

package catalog

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ErrEmptyImageBatch indicates an upload request carrying no files.
var ErrEmptyImageBatch = errors.New("catalog: image batch is empty")

// ImageUpload is one file-like input in an upload batch.
type ImageUpload struct {
	Name   string
	Reader io.Reader
}

// UploadImages decodes every file in the batch into a self-contained data
// URI. The batch is atomic: if any decode fails, nothing is appended and a
// single aggregate error describes every failure.
func (s *Service) UploadImages(uploads []ImageUpload) ([]Image, error) {
	if len(uploads) == 0 {
		return nil, ErrEmptyImageBatch
	}

	decoded := make([]Image, 0, len(uploads))
	var failures []error
	for _, upload := range uploads {
		image, err := s.decodeImage(upload)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", upload.Name, err))
			continue
		}
		decoded = append(decoded, image)
	}
	if len(failures) > 0 {
		err := errors.Join(failures...)
		s.logError(opUploadImages, "batch_decode_failed", err, zap.Int("batch_size", len(uploads)))
		return nil, fmt.Errorf("%s: %w", opUploadImages, err)
	}

	s.store.AppendImages(decoded)
	s.render()
	return decoded, nil
}

func (s *Service) decodeImage(upload ImageUpload) (Image, error) {
	raw, err := io.ReadAll(upload.Reader)
	if err != nil {
		return Image{}, err
	}
	if len(raw) == 0 {
		return Image{}, errors.New("empty file")
	}
	id, err := s.idProvider.NewID()
	if err != nil {
		return Image{}, err
	}
	contentType := http.DetectContentType(raw)
	data := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(raw))
	return Image{ID: id, Name: upload.Name, Data: data}, nil
}

package storage

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// Image is a sniffed upload ready for the asset manager.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DetectImage sniffs data and rejects anything that is not an image.
func DetectImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, apperrors.NewFieldValidationError("image", "image is empty")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, apperrors.NewFieldValidationError("image", "file must be an image")
	}
	contentType := mt.String()
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return &Image{
		Data:        data,
		ContentType: contentType,
		Extension:   mt.Extension(),
	}, nil
}

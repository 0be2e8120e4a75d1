package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"

	"github.com/starford/shujia/internal/apperr"
)

var allowedImages = map[types.Type]string{
	matchers.TypeJpeg: ".jpg",
	matchers.TypePng:  ".png",
	matchers.TypeGif:  ".gif",
	matchers.TypeWebp: ".webp",
}

// DetectImage sniffs data and returns the file extension for a supported
// image (JPEG, PNG, GIF or WebP).
func DetectImage(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("%w: only image files are allowed", apperr.ErrInvalidInput)
	}
	ext, ok := allowedImages[kind]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %s", apperr.ErrInvalidInput, kind.MIME.Value)
	}
	return ext, nil
}

// IsImageName reports whether name carries the extension of a supported
// image type. Other stored uploads are served as downloads.
func IsImageName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".jpeg" {
		return true
	}
	for _, e := range allowedImages {
		if e == ext {
			return true
		}
	}
	return false
}

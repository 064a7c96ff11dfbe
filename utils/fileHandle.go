package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads that are not png, jpeg, gif or webp
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// SaveQuizImage stores an uploaded question or option image under destDir and
// returns its image key, the file name questions and options refer to.
func SaveQuizImage(file *multipart.FileHeader, destDir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedImage
	}

	// Open the uploaded file
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	key := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, key))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return key, nil
}

// GetImageURL is the public path an image key is served from
func GetImageURL(key string) string {
	if key == "" {
		return ""
	}
	return "/uploads/quiz-images/" + key
}

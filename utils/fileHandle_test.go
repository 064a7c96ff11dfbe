package utils

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadedFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveQuizImage(t *testing.T) {
	dir := t.TempDir()

	key, err := SaveQuizImage(uploadedFile(t, "Cat.PNG", []byte("png-bytes")), dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(stored))
	assert.Equal(t, "/uploads/quiz-images/"+key, GetImageURL(key))
	assert.Empty(t, GetImageURL(""))
}

func TestSaveQuizImageRejectsOtherFiles(t *testing.T) {
	_, err := SaveQuizImage(uploadedFile(t, "notes.exe", []byte("x")), t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

package test

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

// LoadTestFile reads a file from the testdata directory and wraps it in
// a multipart form body.
//
// It returns the body and the headers the request needs to carry so
// that the server parses the form.
func LoadTestFile(t *testing.T, filePath string) (*bytes.Buffer, map[string]string) {
	file, err := os.Open(path.Join("../../../testdata", filePath))
	require.Nil(t, err)
	defer file.Close()

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	w, err := mw.CreateFormFile("file", filePath)
	require.Nil(t, err)

	_, err = io.Copy(w, file)
	require.Nil(t, err)

	mw.Close()

	return body, map[string]string{"Content-Type": mw.FormDataContentType()}
}

package validation

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jpegHeader is the minimal JFIF magic-number prefix http.DetectContentType
// recognizes as image/jpeg.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["image"][0]
}

func TestValidateFileAcceptsJPEG(t *testing.T) {
	header := multipartHeader(t, "proof.jpg", jpegHeader)
	assert.NoError(t, ValidateFile(header, ProofImageConstraints))
}

func TestValidateFileRejectsSpoofedContentType(t *testing.T) {
	// A text payload named .jpg must fail on magic numbers, not pass on
	// the extension.
	header := multipartHeader(t, "proof.jpg", []byte("just some text pretending to be an image"))

	err := ValidateFile(header, ProofImageConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestValidateFileRejectsWrongExtension(t *testing.T) {
	header := multipartHeader(t, "proof.gif", jpegHeader)

	err := ValidateFile(header, ProofImageConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file extension")
}

func TestValidateFileAllowsMissingExtension(t *testing.T) {
	header := multipartHeader(t, "proof", jpegHeader)
	assert.NoError(t, ValidateFile(header, ProofImageConstraints))
}

func TestValidateFileRejectsOversizedUpload(t *testing.T) {
	big := make([]byte, len(jpegHeader))
	copy(big, jpegHeader)
	big = append(big, bytes.Repeat([]byte{0}, 11<<20)...)

	header := multipartHeader(t, "proof.jpg", big)

	err := ValidateFile(header, ProofImageConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

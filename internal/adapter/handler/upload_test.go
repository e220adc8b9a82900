package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func doUpload(t *testing.T, h *Upload, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartCSV(t, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/upload-csv", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	e := echo.New()
	c := e.NewContext(req, rec)
	require.NoError(t, h.UploadCSV(c))

	return rec
}

func TestUploadCSV_Success(t *testing.T) {
	h := NewUploadHandler(nil, 5*1024*1024, zap.NewNop())

	rec := doUpload(t, h, "exit-survey.csv", "id,feedback\n1,Too slow\n2,Too expensive\n")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Success      bool     `json:"success"`
			Data         []string `json:"data"`
			Preview      []string `json:"preview"`
			Filename     string   `json:"filename"`
			TotalEntries int      `json:"totalEntries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Data.Success)
	assert.Equal(t, []string{"Too slow", "Too expensive"}, resp.Data.Data)
	assert.Equal(t, []string{"Too slow", "Too expensive"}, resp.Data.Preview)
	assert.Equal(t, "exit-survey.csv", resp.Data.Filename)
	assert.Equal(t, 2, resp.Data.TotalEntries)
}

func TestUploadCSV_PreviewCappedAtFive(t *testing.T) {
	h := NewUploadHandler(nil, 5*1024*1024, zap.NewNop())

	rec := doUpload(t, h, "big.csv", "comment\na\nb\nc\nd\ne\nf\n")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Preview      []string `json:"preview"`
			TotalEntries int      `json:"totalEntries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Preview, 5)
	assert.Equal(t, 6, resp.Data.TotalEntries)
}

func TestUploadCSV_RejectsNonCSV(t *testing.T) {
	h := NewUploadHandler(nil, 5*1024*1024, zap.NewNop())

	rec := doUpload(t, h, "feedback.xlsx", "feedback\nx\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadCSV_RejectsOversizedFile(t *testing.T) {
	h := NewUploadHandler(nil, 64, zap.NewNop())

	rec := doUpload(t, h, "big.csv", "feedback\n"+string(bytes.Repeat([]byte("a"), 200))+"\n")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadCSV_NoFeedbackColumn(t *testing.T) {
	h := NewUploadHandler(nil, 5*1024*1024, zap.NewNop())

	rec := doUpload(t, h, "other.csv", "id,name\n1,Alice\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "no feedback column")
}

func TestUploadCSV_MissingFile(t *testing.T) {
	h := NewUploadHandler(nil, 5*1024*1024, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-csv", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.UploadCSV(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

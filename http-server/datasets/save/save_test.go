package save

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"delivery-planner/internal/planner"
	"delivery-planner/internal/service/delivery"
	"delivery-planner/internal/storage"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) ProcessUpload(ctx context.Context, name string, demandFile, transitFile io.Reader) (*delivery.UploadResult, error) {
	args := m.Called(ctx, name, demandFile, transitFile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.UploadResult), args.Error(1)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".xlsx")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestUploadDataset_Success(t *testing.T) {
	mockUploader := new(MockUploader)

	result := &delivery.UploadResult{
		Dataset: &storage.Dataset{ID: "ds-1", Name: "march"},
		Summary: storage.DatasetSummary{TotalNetNeedKg: 241, Batches: 2, TotalCartons: 10},
	}
	mockUploader.On("ProcessUpload", mock.Anything, "march", mock.Anything, mock.Anything).
		Return(result, nil)

	handler := UploadDataset(slog.Default(), mockUploader)

	body, contentType := multipartBody(t,
		map[string]string{"name": "march"},
		map[string][]byte{"demand": []byte("d"), "transit": []byte("t")},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ds-1", resp.Result.Dataset.ID)
	assert.Equal(t, 10, resp.Result.Summary.TotalCartons)

	mockUploader.AssertExpectations(t)
}

func TestUploadDataset_MissingFile(t *testing.T) {
	handler := UploadDataset(slog.Default(), new(MockUploader))

	body, contentType := multipartBody(t, nil,
		map[string][]byte{"demand": []byte("d")}, // no transit file
	)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadDataset_ShapeError(t *testing.T) {
	mockUploader := new(MockUploader)
	mockUploader.On("ProcessUpload", mock.Anything, "", mock.Anything, mock.Anything).
		Return(nil, &planner.DataShapeError{Reason: `missing column "conv"`})

	handler := UploadDataset(slog.Default(), mockUploader)

	body, contentType := multipartBody(t, nil,
		map[string][]byte{"demand": []byte("d"), "transit": []byte("t")},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp Response
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "conv")
}

func TestUploadDataset_NotMultipart(t *testing.T) {
	handler := UploadDataset(slog.Default(), new(MockUploader))

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Flasche999/Bilder-Quiz-2/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Addr:      ":0",
		PublicURL: "http://party.local:8080",
		UploadDir: t.TempDir(),
	}
}

func postUpload(t *testing.T, cfg config.Config, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	Upload(cfg, zap.NewNop().Sugar())(rec, req)
	return rec
}

func TestUpload_WritesFilesAndReturnsURLs(t *testing.T) {
	cfg := testConfig(t)
	img := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	payload, err := json.Marshal([]uploadFile{{
		Name: "mein bild.png",
		Data: "data:image/png;base64," + base64.StdEncoding.EncodeToString(img),
	}})
	require.NoError(t, err)

	rec := postUpload(t, cfg, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.True(t, resp.OK)
	require.Len(t, resp.URLs, 1)
	require.True(t, strings.HasPrefix(resp.URLs[0], "/uploads/"))

	name := strings.TrimPrefix(resp.URLs[0], "/uploads/")
	require.NotContains(t, name, " ", "filename must be sanitized")
	written, err := os.ReadFile(filepath.Join(cfg.UploadDir, name))
	require.NoError(t, err)
	require.Equal(t, img, written)
}

func TestUpload_MalformedDataURI(t *testing.T) {
	cfg := testConfig(t)
	cases := []struct {
		name string
		data string
	}{
		{name: "not a data uri", data: "http://example.com/a.png"},
		{name: "missing comma", data: "data:image/png;base64"},
		{name: "bad base64", data: "data:image/png;base64,!!!not-base64!!!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, _ := json.Marshal([]uploadFile{{Name: "x.png", Data: tc.data}})
			rec := postUpload(t, cfg, payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpload_BadRequests(t *testing.T) {
	cfg := testConfig(t)

	rec := postUpload(t, cfg, []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postUpload(t, cfg, []byte("[]"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_TraversalNameIsNeutralized(t *testing.T) {
	cfg := testConfig(t)
	payload, _ := json.Marshal([]uploadFile{{
		Name: "../../etc/passwd",
		Data: "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte("x")),
	}})

	rec := postUpload(t, cfg, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotContains(t, entries[0].Name(), "..")
}

func TestJoinQR_ReturnsPNG(t *testing.T) {
	cfg := testConfig(t)
	req := httptest.NewRequest(http.MethodGet, "/qr?size=128", nil)
	rec := httptest.NewRecorder()
	JoinQR(cfg)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.Greater(t, rec.Body.Len(), 8)
	// PNG magic bytes
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

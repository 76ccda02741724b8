package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/Flasche999/Bilder-Quiz-2/internal/config"
)

type uploadFile struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64 data URI
}

type uploadResponse struct {
	OK   bool     `json:"ok"`
	URLs []string `json:"urls"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Upload accepts a batch of base64 data URIs and writes them into the
// upload dir. Failures never touch round state; the admin just retries.
func Upload(cfg config.Config, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var files []uploadFile
		if err := json.NewDecoder(r.Body).Decode(&files); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if len(files) == 0 {
			writeError(w, http.StatusBadRequest, "no files")
			return
		}

		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			log.Errorw("upload dir", "err", err)
			writeError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}

		urls := make([]string, 0, len(files))
		for _, f := range files {
			raw, err := decodeDataURI(f.Data)
			if err != nil {
				writeError(w, http.StatusBadRequest, "malformed data uri: "+f.Name)
				return
			}
			name := uuid.New().String()[:8] + "_" + sanitizeName(f.Name)
			if err := os.WriteFile(filepath.Join(cfg.UploadDir, name), raw, 0o644); err != nil {
				log.Errorw("upload write", "file", name, "err", err)
				writeError(w, http.StatusInternalServerError, "write failed")
				return
			}
			urls = append(urls, "/uploads/"+name)
		}

		log.Infow("images uploaded", "count", len(urls))
		writeJSON(w, http.StatusOK, uploadResponse{OK: true, URLs: urls})
	}
}

func decodeDataURI(uri string) ([]byte, error) {
	_, b64, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(uri, "data:") {
		return nil, os.ErrInvalid
	}
	return base64.StdEncoding.DecodeString(b64)
}

// sanitizeName keeps the upload filename a plain basename.
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" || name == "" {
		return "upload.bin"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// JoinQR renders a PNG QR code pointing players at the public URL, so a
// phone can join by scanning the beamer screen.
func JoinQR(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		size := 256
		if s := r.URL.Query().Get("size"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n >= 64 && n <= 2048 {
				size = n
			}
		}
		png, err := qrcode.Encode(cfg.PublicURL, qrcode.Medium, size)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "qr encode failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Flasche999/Bilder-Quiz-2/internal/config"
	"github.com/Flasche999/Bilder-Quiz-2/internal/room"
	"github.com/Flasche999/Bilder-Quiz-2/internal/ws"
)

func SetupRoutes(rm *room.Room, cfg config.Config, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(rm, log))
	r.Post("/upload", Upload(cfg, log))
	r.Get("/qr", JoinQR(cfg))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

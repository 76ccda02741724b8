package main

import (
	"context"
	"net/http"
	"os"

	"github.com/Flasche999/Bilder-Quiz-2/internal/config"
	"github.com/Flasche999/Bilder-Quiz-2/internal/httpapi"
	"github.com/Flasche999/Bilder-Quiz-2/internal/logger"
	"github.com/Flasche999/Bilder-Quiz-2/internal/monitor"
	"github.com/Flasche999/Bilder-Quiz-2/internal/room"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(os.Getenv("BQ_ENV") != "production")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	mon := monitor.New("bilderquiz")

	ctx := context.Background()
	rm := room.NewRoom(ctx, log, mon)

	handler := httpapi.SetupRoutes(rm, cfg, log)

	log.Infof("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal(err)
	}
}

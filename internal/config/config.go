package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr      string // listen address
	PublicURL string // what the join QR code points at
	UploadDir string
}

// Load reads an optional .env file, then the environment. Every field
// has a development default.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:      getenv("BQ_ADDR", ":8080"),
		PublicURL: getenv("BQ_PUBLIC_URL", "http://localhost:8080"),
		UploadDir: getenv("BQ_UPLOAD_DIR", "uploads"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DataDir        string
	StoreBackend   string // file | sqlite | redis
	DBDSN          string
	RedisAddr      string
	LogFile        string
	AdminTokenHash string

	MaxCartItems  int
	MaxQtyPerItem int
	LowStockAt    int
	CartTTL       time.Duration
}

func Load() Config {
	// .env is optional; real env vars win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[warn] could not read .env: %v", err)
	}

	backend := strings.ToLower(getenv("STORE_BACKEND", "file"))
	switch backend {
	case "file", "sqlite", "redis":
	default:
		log.Printf("[warn] unknown STORE_BACKEND=%q, falling back to file", backend)
		backend = "file"
	}

	cfg := Config{
		Port:           getenv("PORT", "8080"),
		DataDir:        getenv("DATA_DIR", "./data"),
		StoreBackend:   backend,
		DBDSN:          getenv("DB_DSN", "campusmart.db"), // sqlite file in project root
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		LogFile:        getenv("LOG_FILE", "./campusmart.log"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),

		MaxCartItems:  getint("MAX_CART_ITEMS", 50),
		MaxQtyPerItem: getint("MAX_QTY_PER_ITEM", 99),
		LowStockAt:    getint("LOW_STOCK_AT", 5),
		CartTTL:       getduration("CART_TTL", 0),
	}
	log.Printf("[config] PORT=%s DATA_DIR=%s STORE_BACKEND=%s DB_DSN=%s REDIS_ADDR=%s LOG_FILE=%s CART_TTL=%s",
		cfg.Port, cfg.DataDir, cfg.StoreBackend, cfg.DBDSN, cfg.RedisAddr, cfg.LogFile, cfg.CartTTL)
	if cfg.AdminTokenHash == "" {
		log.Printf("[warn] ADMIN_TOKEN_HASH not set; /admin is disabled")
	}
	return cfg
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		log.Printf("[warn] %s=%q is not a positive integer, using %d", k, v, def)
		return def
	}
	return n
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d < 0 {
		log.Printf("[warn] %s=%q is not a duration, using %s", k, v, def)
		return def
	}
	return d
}

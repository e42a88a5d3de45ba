package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"

	"tululu/internal/library"
	"tululu/internal/logger"
	"tululu/internal/response"
	"tululu/internal/server"
	"tululu/internal/storage/books"
)

func getEnvOrDefault(key, default_ string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}

	return default_
}

func getBoolEnv(key string) bool {
	if val := strings.ToLower(os.Getenv(key)); val == "yes" || val == "on" || val == "true" {
		return true
	}

	return false
}

var (
	logLevel   = getEnvOrDefault("LOG_LEVEL", "info")
	logFormat  = getEnvOrDefault("LOG_FORMAT", "text")
	dbConnStr  = os.Getenv("DATABASE_URL")
	bindAddr   = getEnvOrDefault("BIND_ADDR", ":8080")
	libraryDir = getEnvOrDefault("LIBRARY_DIR", "books/")
	debugMode  = getBoolEnv("DEBUG_MODE")
)

func main() {
	_, thisFile, _, _ := runtime.Caller(0)

	lvl, lvlErr := logger.ParseLevel(logLevel)
	err := logger.SetupSLog(os.Stderr, lvl, logFormat, path.Dir(path.Dir(path.Dir(thisFile))), middleware.RequestIDKey)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	if lvlErr != nil {
		slog.Error(lvlErr.Error())
		os.Exit(1)
	}

	var br books.Reader
	if dbConnStr != "" {
		cfg, err := pgxpool.ParseConfig(dbConnStr)
		if err != nil {
			slog.Error("Failed to parse DATABASE_URL: " + err.Error())
			os.Exit(1)
		}

		cfg.ConnConfig.Tracer = logger.NewPGXTracer(slog.Default())

		pg, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			slog.Error("failed to create postgres pool: " + err.Error())
			os.Exit(1)
		}

		br = books.NewPGXRepository(pg, slog.Default())
	} else {
		jsonPath := filepath.Join(libraryDir, library.FileName)
		slog.Info("DATABASE_URL is not set, serving " + jsonPath)
		br = books.NewJSONReader(jsonPath)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Mount("/", server.Handler(br, libraryDir, &response.Responder{DebugMode: debugMode}))

	slog.Info("Listening on " + bindAddr)
	slog.Error("aborting: " + http.ListenAndServe(bindAddr, r).Error())
	os.Exit(1)
}

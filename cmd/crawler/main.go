package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"tululu/internal/logger"
)

func getEnvOrDefault(key, default_ string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}

	return default_
}

var (
	baseUrl       = getEnvOrDefault("BASE_URL", "https://tululu.org")
	logLevel      = getEnvOrDefault("LOG_LEVEL", "info")
	logFormat     = getEnvOrDefault("LOG_FORMAT", "text")
	retryAttempts = getEnvOrDefault("RETRY_ATTEMPTS", "5")
	retryDelay    = getEnvOrDefault("RETRY_DELAY", "10s")
	httpTimeout   = getEnvOrDefault("HTTP_TIMEOUT", "30s")
	dbConnStr     = os.Getenv("DATABASE_URL")
)

type config struct {
	Base          *url.URL
	RetryAttempts int
	RetryDelay    time.Duration
	HttpTimeout   time.Duration
	DatabaseUrl   string
}

func loadConfig() (*config, error) {
	base, err := url.Parse(baseUrl)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid URL in BASE_URL: %q", baseUrl)
	}

	attempts, err := strconv.Atoi(retryAttempts)
	if err != nil || attempts < 1 {
		return nil, fmt.Errorf("RETRY_ATTEMPTS must be a positive number, got %q", retryAttempts)
	}

	delay, err := time.ParseDuration(retryDelay)
	if err != nil || delay < 0 {
		return nil, fmt.Errorf("invalid duration in RETRY_DELAY: %q", retryDelay)
	}

	timeout, err := time.ParseDuration(httpTimeout)
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid duration in HTTP_TIMEOUT: %q", httpTimeout)
	}

	return &config{
		Base:          base,
		RetryAttempts: attempts,
		RetryDelay:    delay,
		HttpTimeout:   timeout,
		DatabaseUrl:   dbConnStr,
	}, nil
}

func main() {
	_, thisFile, _, _ := runtime.Caller(0)

	lvl, lvlErr := logger.ParseLevel(logLevel)
	// Progress and per-book failures go to stdout together with the book summaries
	if err := logger.SetupSLog(os.Stdout, lvl, logFormat, path.Dir(path.Dir(path.Dir(thisFile))), nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if lvlErr != nil {
		slog.Error(lvlErr.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

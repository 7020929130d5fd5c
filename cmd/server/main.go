//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/AmpSpectrum/pkg/ampspectrum"
	"github.com/himanishpuri/AmpSpectrum/pkg/logger"
)

func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(getenv func(string) string, key string, defaultValue int) (int, error) {
	value := getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ampspectrum.ErrInvalidConfig, key, value)
	}
	return n, nil
}

// loadServerConfig resolves flags over environment defaults.
func loadServerConfig(args []string, getenv func(string) string) (*ServerConfig, error) {
	defaultPort, err := getEnvInt(getenv, "SPECTRUM_PORT", 8080)
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	port := fs.Int("port", defaultPort, "HTTP server port")
	dbPath := fs.String("db", getEnvOrDefault(getenv, "SPECTRUM_DB_PATH", "ampspectrum.sqlite3"), "Path to SQLite database")
	allowedOrigins := fs.String("origins", getEnvOrDefault(getenv, "SPECTRUM_ORIGINS", "*"), "Comma-separated list of allowed CORS origins (use * for all)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *port < 1 || *port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ampspectrum.ErrInvalidConfig, *port)
	}

	var origins []string
	if *allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(*allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	return &ServerConfig{
		Port:           *port,
		DBPath:         *dbPath,
		AllowedOrigins: origins,
	}, nil
}

func main() {
	_ = godotenv.Load()

	log := logger.GetLogger()

	config, err := loadServerConfig(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("Invalid server configuration: %v", err)
	}

	opts, err := ampspectrum.ConfigFromEnv(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	opts = append(opts, ampspectrum.WithDBPath(config.DBPath))

	service, err := ampspectrum.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

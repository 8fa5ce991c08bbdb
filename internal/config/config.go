// Package config loads application configuration from flags and
// environment variables.
package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	SerialPort string
	BaudRate   int
	Addr       string
	MockMode   bool
	WindowSize int
	DataDir    string
	Debug      bool
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and Environment Variables
	cfg.SerialPort = getEnv("CROWDWATCH_PORT", "/dev/ttyUSB0")
	cfg.BaudRate = getEnvInt("CROWDWATCH_BAUD", 115200)
	cfg.Addr = getEnv("CROWDWATCH_ADDR", ":8080")
	cfg.MockMode = getEnvBool("CROWDWATCH_MOCK", false)
	cfg.WindowSize = getEnvInt("CROWDWATCH_WINDOW", 120)
	cfg.DataDir = getEnv("CROWDWATCH_DATA", getDefaultDataDir())

	// Command Line Flags (Override Env)
	flag.StringVar(&cfg.SerialPort, "port", cfg.SerialPort, "Serial port of the monitoring node")
	flag.IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "Serial baud rate")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Run with a simulated line feed instead of hardware")
	flag.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "Rolling window size in samples")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "Directory for session logs and reports")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDataDir returns the default data directory in the user's
// home directory, creating it if needed.
func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "."
	}

	dir := filepath.Join(home, ".crowdwatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .crowdwatch directory, using current dir: %v", err)
		return "."
	}
	return dir
}

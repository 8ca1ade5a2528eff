// Package config loads renderer configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the render service and CLI.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// Browser launch settings
	LaunchBrowser bool
	ProfileDir    string
	WindowSize    string

	// Render behavior
	RenderTimeoutMS int

	// Service settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
	RenderDir        string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:       getEnvOrDefault("BOKEHRENDER_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:          getEnvIntOrDefault("BOKEHRENDER_CDP_PORT", 9224),
		LaunchBrowser:    getEnvBoolOrDefault("BOKEHRENDER_LAUNCH_BROWSER", true),
		ProfileDir:       getEnvOrDefault("BOKEHRENDER_PROFILE_DIR", ""),
		WindowSize:       getEnvOrDefault("BOKEHRENDER_WINDOW_SIZE", "1280,800"),
		RenderTimeoutMS:  getEnvIntOrDefault("BOKEHRENDER_RENDER_TIMEOUT_MS", 30000),
		BindAddr:         getEnvOrDefault("BOKEHRENDER_BIND_ADDR", "127.0.0.1:8199"),
		PortCandidates:   getEnvListOrDefault("BOKEHRENDER_PORT_CANDIDATES", []string{"127.0.0.1:8199", "127.0.0.1:8299", "127.0.0.1:8399"}),
		PortAutoFallback: getEnvBoolOrDefault("BOKEHRENDER_PORT_AUTO_FALLBACK", true),
		RenderDir:        getEnvOrDefault("BOKEHRENDER_RENDER_DIR", "./renders"),
		LogLevel:         strings.ToLower(getEnvOrDefault("BOKEHRENDER_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("BOKEHRENDER_LOG_FILE", "logs/bokeh_render.log"),
	}
	if cfg.RenderTimeoutMS < 1000 {
		cfg.RenderTimeoutMS = 1000
	}

	return cfg, nil
}

// CDPURL returns the CDP HTTP endpoint used by the chromedp remote allocator.
func (c *Config) CDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

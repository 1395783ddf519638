// Package config handles kiosk configuration
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GriffinCanCode/facekiosk/internal/camera"
	apperrors "github.com/GriffinCanCode/facekiosk/internal/errors"
)

type Config struct {
	HTTPAddr       string        `yaml:"http_addr"`
	HealthAddr     string        `yaml:"health_addr"`
	Origins        []string      `yaml:"origins"` // CORS and websocket origin patterns
	RecognizeURL   string        `yaml:"recognize_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // 0 leaves it to the transport
	Camera         CameraConfig  `yaml:"camera"`
	Preview        PreviewConfig `yaml:"preview"`
	Attendance     Attendance    `yaml:"attendance"`
	Log            LogConfig     `yaml:"log"`
}

// CameraConfig selects the capture device.
type CameraConfig struct {
	Backend     string  `yaml:"backend"` // ffmpeg | opencv
	Device      string  `yaml:"device"`
	FacingMode  string  `yaml:"facing_mode"`
	JPEGQuality float64 `yaml:"jpeg_quality"` // 0..1, as canvas.toDataURL takes it
}

// PreviewConfig controls the live preview pushed to the kiosk page.
type PreviewConfig struct {
	Rate            float64 `yaml:"rate"` // Hz
	MaxHashDistance int     `yaml:"max_hash_distance"`
}

// Attendance is shown on the kiosk page only; the window is enforced server-side.
type Attendance struct {
	Window   string `yaml:"window"`
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		HTTPAddr:     ":8080",
		HealthAddr:   ":8081",
		Origins:      []string{"*"},
		RecognizeURL: "http://localhost:8000/api/recognize",
		Camera: CameraConfig{
			Backend:     "ffmpeg",
			Device:      camera.DefaultDevice,
			FacingMode:  "user",
			JPEGQuality: 0.9,
		},
		Preview: PreviewConfig{
			Rate:            5.0,
			MaxHashDistance: 2,
		},
		Attendance: Attendance{
			Window:   "00:00–21:00",
			Timezone: "Asia/Kolkata",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overridden by environment variables.
func Load() *Config {
	return applyEnv(Defaults())
}

// applyEnv overrides cfg with any environment variable that is set. Env wins
// over a config file.
func applyEnv(cfg *Config) *Config {
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.HealthAddr = getEnvAllowEmpty("HEALTH_ADDR", cfg.HealthAddr)
	cfg.Origins = getEnvList("ALLOWED_ORIGINS", cfg.Origins)
	cfg.RecognizeURL = getEnv("RECOGNIZE_URL", cfg.RecognizeURL)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.Camera.Backend = getEnv("CAMERA_BACKEND", cfg.Camera.Backend)
	cfg.Camera.Device = getEnv("CAMERA_DEVICE", cfg.Camera.Device)
	cfg.Camera.FacingMode = getEnv("CAMERA_FACING", cfg.Camera.FacingMode)
	cfg.Camera.JPEGQuality = getEnvFloat("JPEG_QUALITY", cfg.Camera.JPEGQuality)
	cfg.Preview.Rate = getEnvFloat("PREVIEW_RATE", cfg.Preview.Rate)
	cfg.Preview.MaxHashDistance = getEnvInt("PREVIEW_MAX_HASH_DISTANCE", cfg.Preview.MaxHashDistance)
	cfg.Attendance.Window = getEnv("ATTEND_WINDOW", cfg.Attendance.Window)
	cfg.Attendance.Timezone = getEnv("TIMEZONE", cfg.Attendance.Timezone)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	return cfg
}

// Validate reports the first setting the kiosk cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.RecognizeURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.Newf(apperrors.ConfigInvalid, "recognize url %q must be an absolute http(s) URL", c.RecognizeURL)
	}
	switch c.Camera.Backend {
	case "ffmpeg", "opencv":
	default:
		return apperrors.Newf(apperrors.ConfigInvalid, "unknown camera backend %q (use ffmpeg or opencv)", c.Camera.Backend)
	}
	if c.Camera.JPEGQuality <= 0 || c.Camera.JPEGQuality > 1 {
		return apperrors.Newf(apperrors.ConfigInvalid, "jpeg quality must be in (0, 1], got %v", c.Camera.JPEGQuality)
	}
	if c.Preview.Rate <= 0 {
		return apperrors.Newf(apperrors.ConfigInvalid, "preview rate must be positive, got %v", c.Preview.Rate)
	}
	if c.RequestTimeout < 0 {
		return apperrors.Newf(apperrors.ConfigInvalid, "request timeout must not be negative, got %v", c.RequestTimeout)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvAllowEmpty lets an explicitly empty variable switch a listener off.
func getEnvAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}

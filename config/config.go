package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"autodamage/matching"
)

const (
	DetectorExec = "exec"
	DetectorMock = "mock"
)

type Config struct {
	// HTTP
	Port        string
	UploadDir   string
	MaxUploadMB int

	// Storage
	DBPath      string
	CatalogPath string

	// Analysis
	MinIoU        float64
	DetectorMode  string
	PythonBin     string
	DetectScript  string
	DamageWeights string
	PartsWeights  string
	DetectConf    float64
	DetectTimeout time.Duration

	// Optional backends, disabled when empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	NatsURL       string

	LogLevel string

	// EnvFile is the .env file that was loaded, empty if none.
	EnvFile string
}

func Load() (*Config, error) {
	envFile := ""
	for _, path := range []string{".env", "../.env", "/app/.env"} {
		if err := godotenv.Load(path); err == nil {
			envFile = path
			break
		}
	}

	config := &Config{
		Port:        getEnvOrDefault("PORT", "8081"),
		UploadDir:   getEnvOrDefault("UPLOAD_DIR", "./uploads"),
		DBPath:      getEnvOrDefault("DB_PATH", "analysis.db"),
		CatalogPath: os.Getenv("CATALOG_PATH"),

		DetectorMode:  getEnvOrDefault("DETECTOR_MODE", DetectorMock),
		PythonBin:     getEnvOrDefault("PYTHON_BIN", "python3"),
		DetectScript:  getEnvOrDefault("DETECT_SCRIPT", "./scripts/detect.py"),
		DamageWeights: getEnvOrDefault("DAMAGE_WEIGHTS", "./weights/damage.pt"),
		PartsWeights:  getEnvOrDefault("PARTS_WEIGHTS", "./weights/parts.pt"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		NatsURL:       os.Getenv("NATS_URL"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		EnvFile:  envFile,
	}

	var err error
	if config.MinIoU, err = parseFloatOrDefault("MIN_IOU", matching.DefaultMinIoU); err != nil {
		return nil, err
	}
	if config.DetectConf, err = parseFloatOrDefault("DETECT_CONF", 0.05); err != nil {
		return nil, err
	}
	if config.MaxUploadMB, err = parseIntOrDefault("MAX_UPLOAD_MB", 10); err != nil {
		return nil, err
	}
	if config.RedisDB, err = parseIntOrDefault("REDIS_DB", 0); err != nil {
		return nil, err
	}

	timeout, err := parseIntOrDefault("DETECT_TIMEOUT_SEC", 60)
	if err != nil {
		return nil, err
	}
	config.DetectTimeout = time.Duration(timeout) * time.Second

	ttl, err := parseIntOrDefault("CACHE_TTL_SEC", 600)
	if err != nil {
		return nil, err
	}
	config.CacheTTL = time.Duration(ttl) * time.Second

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	required := map[string]string{
		"PORT":       c.Port,
		"UPLOAD_DIR": c.UploadDir,
		"DB_PATH":    c.DBPath,
	}
	if c.DetectorMode == DetectorExec {
		required["PYTHON_BIN"] = c.PythonBin
		required["DETECT_SCRIPT"] = c.DetectScript
		required["DAMAGE_WEIGHTS"] = c.DamageWeights
		required["PARTS_WEIGHTS"] = c.PartsWeights
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.DetectorMode != DetectorExec && c.DetectorMode != DetectorMock {
		return fmt.Errorf("DETECTOR_MODE must be %q or %q, got %q", DetectorExec, DetectorMock, c.DetectorMode)
	}
	if c.MinIoU < 0 || c.MinIoU >= 1 {
		return fmt.Errorf("MIN_IOU must be in [0, 1), got %v", c.MinIoU)
	}
	if c.DetectConf < 0 || c.DetectConf > 1 {
		return fmt.Errorf("DETECT_CONF must be in [0, 1], got %v", c.DetectConf)
	}
	if c.DetectTimeout < time.Second {
		return fmt.Errorf("DETECT_TIMEOUT_SEC must be at least 1")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1")
	}
	if c.RedisAddr != "" && c.CacheTTL < time.Second {
		return fmt.Errorf("CACHE_TTL_SEC must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parseIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

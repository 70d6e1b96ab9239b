package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "DB_PATH", "UPLOAD_DIR", "CATALOG_PATH", "MIN_IOU", "DETECTOR_MODE", "PYTHON_BIN",
	"DETECT_SCRIPT", "DAMAGE_WEIGHTS", "PARTS_WEIGHTS", "DETECT_CONF", "DETECT_TIMEOUT_SEC",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL_SEC", "NATS_URL", "MAX_UPLOAD_MB",
	"LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, "analysis.db", cfg.DBPath)
	assert.Equal(t, 0.1, cfg.MinIoU)
	assert.Equal(t, DetectorMock, cfg.DetectorMode)
	assert.Equal(t, 0.05, cfg.DetectConf)
	assert.Equal(t, 60*time.Second, cfg.DetectTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.MaxUploadMB)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.NatsURL)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MIN_IOU", "0.25")
	t.Setenv("DETECTOR_MODE", "exec")
	t.Setenv("DETECT_TIMEOUT_SEC", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL_SEC", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 0.25, cfg.MinIoU)
	assert.Equal(t, DetectorExec, cfg.DetectorMode)
	assert.Equal(t, 5*time.Second, cfg.DetectTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	tests := map[string]string{
		"MIN_IOU":            "lots",
		"DETECT_CONF":        "x",
		"MAX_UPLOAD_MB":      "1.5",
		"REDIS_DB":           "one",
		"DETECT_TIMEOUT_SEC": "soon",
		"CACHE_TTL_SEC":      "-",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:          "8081",
			UploadDir:     "./uploads",
			DBPath:        "analysis.db",
			MinIoU:        0.1,
			DetectorMode:  DetectorExec,
			PythonBin:     "python3",
			DetectScript:  "detect.py",
			DamageWeights: "damage.pt",
			PartsWeights:  "parts.pt",
			DetectConf:    0.25,
			DetectTimeout: time.Minute,
			MaxUploadMB:   10,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.DetectorMode = "gpu" }, "DETECTOR_MODE"},
		{"iou too high", func(c *Config) { c.MinIoU = 1 }, "MIN_IOU"},
		{"negative iou", func(c *Config) { c.MinIoU = -0.1 }, "MIN_IOU"},
		{"confidence", func(c *Config) { c.DetectConf = 1.5 }, "DETECT_CONF"},
		{"timeout", func(c *Config) { c.DetectTimeout = 0 }, "DETECT_TIMEOUT_SEC"},
		{"upload size", func(c *Config) { c.MaxUploadMB = 0 }, "MAX_UPLOAD_MB"},
		{"script for exec", func(c *Config) { c.DetectScript = "" }, "DETECT_SCRIPT"},
		{"cache ttl", func(c *Config) { c.RedisAddr = "localhost:6379" }, "CACHE_TTL_SEC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("mock mode needs no script", func(t *testing.T) {
		cfg := valid()
		cfg.DetectorMode = DetectorMock
		cfg.DetectScript = ""
		assert.NoError(t, cfg.Validate())
	})
}

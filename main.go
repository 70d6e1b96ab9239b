package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"autodamage/analyzer"
	"autodamage/cache"
	"autodamage/catalog"
	"autodamage/config"
	"autodamage/database"
	"autodamage/detector"
	"autodamage/events"
	"autodamage/handlers"
	"autodamage/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.EnvFile != "" {
		logger.Info("loaded config", zap.String("file", cfg.EnvFile))
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		return fmt.Errorf("create upload directory %s: %w", cfg.UploadDir, err)
	}

	categories := catalog.Default()
	if cfg.CatalogPath != "" {
		var err error
		if categories, err = catalog.Load(cfg.CatalogPath); err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	logger.Info("database ready", zap.String("path", cfg.DBPath))

	damage, parts := newDetectors(cfg, logger)
	svc := analyzer.New(damage, parts, report.NewAssembler(categories), cfg.MinIoU, logger)

	var opts []handlers.Option

	if cfg.RedisAddr != "" {
		c, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, logger)
		if err != nil {
			logger.Warn("cache disabled", zap.Error(err))
		} else {
			defer c.Close()
			opts = append(opts, handlers.WithCache(c))
		}
	}

	if cfg.NatsURL != "" {
		p, err := events.NewPublisher(cfg.NatsURL, logger)
		if err != nil {
			logger.Warn("events disabled", zap.Error(err))
		} else {
			defer p.Close()
			opts = append(opts, handlers.WithPublisher(p))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	h := handlers.New(database.NewRepository(db), svc, cfg.UploadDir, logger, opts...)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(h, cfg.MaxUploadMB),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("detector_mode", cfg.DetectorMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-sigChan:
		logger.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}

func newDetectors(cfg *config.Config, logger *zap.Logger) (detector.Detector, detector.Detector) {
	if cfg.DetectorMode == config.DetectorMock {
		logger.Warn("using random mock detectors")
		seed := time.Now().UnixNano()
		return detector.NewRandomDetector(detector.KindDamage, seed, 1280, 720),
			detector.NewRandomDetector(detector.KindParts, seed+1, 1280, 720)
	}

	exec := func(weights string) detector.ExecConfig {
		return detector.ExecConfig{
			Python:  cfg.PythonBin,
			Script:  cfg.DetectScript,
			Weights: weights,
			Conf:    cfg.DetectConf,
			Timeout: cfg.DetectTimeout,
		}
	}

	return detector.NewExecDetector(detector.KindDamage, exec(cfg.DamageWeights), logger),
		detector.NewExecDetector(detector.KindParts, exec(cfg.PartsWeights), logger)
}

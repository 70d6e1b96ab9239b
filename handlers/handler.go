package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"autodamage/database"
	"autodamage/events"
	"autodamage/models"
)

// Store persists analyses.
type Store interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	List(ctx context.Context, limit, offset int) ([]models.Analysis, int64, error)
	Get(ctx context.Context, id string) (*models.Analysis, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context) (*models.Statistics, error)
}

type Analyzer interface {
	AnalyzeImage(ctx context.Context, imagePath string) (*models.AnalysisResult, error)
	Analyze(damage, parts *models.DetectionSet, size models.ImageSize) *models.AnalysisResult
}

// Cache is an optional read-through cache. Get returns cache.ErrMiss on a miss.
type Cache interface {
	Get(ctx context.Context, id string) (*models.Analysis, error)
	Set(ctx context.Context, analysis *models.Analysis) error
	Delete(ctx context.Context, id string) error
}

// Publisher is an optional sink for analysis events.
type Publisher interface {
	PublishCompleted(event events.AnalysisCompleted) error
	PublishDeleted(id string) error
}

type Handler struct {
	store     Store
	analyzer  Analyzer
	cache     Cache
	publisher Publisher
	uploadDir string
	logger    *zap.Logger
}

type Option func(*Handler)

func WithCache(c Cache) Option {
	return func(h *Handler) {
		h.cache = c
	}
}

func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

func New(store Store, analyzer Analyzer, uploadDir string, logger *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		store:     store,
		analyzer:  analyzer,
		uploadDir: uploadDir,
		logger:    logger.Named("http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Vehicle Damage Analysis API",
	})
}

// save stores a fresh analysis, then caches and announces it.
func (h *Handler) save(ctx context.Context, analysis *models.Analysis) error {
	if err := h.store.Create(ctx, analysis); err != nil {
		return err
	}

	h.cacheSet(ctx, analysis)

	if h.publisher != nil {
		if err := h.publisher.PublishCompleted(events.CompletedFrom(analysis)); err != nil {
			h.logger.Warn("publish completed event failed", zap.String("id", analysis.ID), zap.Error(err))
		}
	}
	return nil
}

func (h *Handler) cacheSet(ctx context.Context, analysis *models.Analysis) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, analysis); err != nil {
		h.logger.Warn("cache set failed", zap.String("id", analysis.ID), zap.Error(err))
	}
}

// fail writes the error response matching err.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
	default:
		h.logger.Error(message, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

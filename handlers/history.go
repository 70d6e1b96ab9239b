package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"autodamage/cache"
	"autodamage/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func (h *Handler) ListAnalyses(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	analyses, total, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err, "Failed to fetch analyses")
		return
	}

	items := make([]models.AnalysisListItem, 0, len(analyses))
	for i := range analyses {
		items = append(items, analyses[i].ListItem())
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if h.cache != nil {
		analysis, err := h.cache.Get(ctx, id)
		if err == nil {
			c.JSON(http.StatusOK, analysis)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("cache get failed", zap.String("id", id), zap.Error(err))
		}
	}

	analysis, err := h.store.Get(ctx, id)
	if err != nil {
		h.fail(c, err, "Failed to fetch analysis")
		return
	}

	h.cacheSet(ctx, analysis)
	c.JSON(http.StatusOK, analysis)
}

// DeleteAnalysis removes the analysis, its uploaded photo and its cache entry.
func (h *Handler) DeleteAnalysis(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	analysis, err := h.store.Get(ctx, id)
	if err != nil {
		h.fail(c, err, "Failed to delete analysis")
		return
	}

	if err := h.store.Delete(ctx, id); err != nil {
		h.fail(c, err, "Failed to delete analysis")
		return
	}

	if analysis.ImagePath != "" {
		removeUpload(analysis.ImagePath, h.logger.With(zap.String("id", id)))
	}

	if h.cache != nil {
		if err := h.cache.Delete(ctx, id); err != nil {
			h.logger.Warn("cache delete failed", zap.String("id", id), zap.Error(err))
		}
	}

	if h.publisher != nil {
		if err := h.publisher.PublishDeleted(id); err != nil {
			h.logger.Warn("publish deleted event failed", zap.String("id", id), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted successfully"})
}

func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.store.Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to compute statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

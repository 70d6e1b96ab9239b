package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"autodamage/models"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UploadAndAnalyze stores the uploaded photo, runs both detectors on it and saves the
// resulting analysis.
func (h *Handler) UploadAndAnalyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file format. Only JPG, JPEG, and PNG are allowed"})
		return
	}

	analysisID := uuid.New().String()
	imagePath := filepath.Join(h.uploadDir, analysisID+ext)

	if err := saveUpload(file, imagePath); err != nil {
		removeUpload(imagePath, h.logger)
		h.fail(c, err, "Failed to save image")
		return
	}

	log := h.logger.With(zap.String("id", analysisID), zap.String("filename", header.Filename))
	log.Info("image received", zap.Int64("size", header.Size))

	saved := false
	defer func() {
		if !saved {
			removeUpload(imagePath, log)
		}
	}()

	result, err := h.analyzer.AnalyzeImage(c.Request.Context(), imagePath)
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	analysis := models.NewAnalysis(analysisID, header.Filename, imagePath, *result)
	if err := h.save(c.Request.Context(), analysis); err != nil {
		h.fail(c, err, "Failed to save analysis")
		return
	}
	saved = true

	c.JSON(http.StatusOK, analysis)
}

// removeUpload deletes a photo that no stored analysis refers to.
func removeUpload(path string, logger *zap.Logger) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("remove upload failed", zap.String("path", path), zap.Error(err))
	}
}

func saveUpload(src io.Reader, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// DetectionsRequest carries detector output produced elsewhere.
type DetectionsRequest struct {
	Filename         string                `json:"filename"`
	DamageDetections []models.RawDetection `json:"damage_detections"`
	PartDetections   []models.RawDetection `json:"part_detections"`
	DamageNames      map[int]string        `json:"damage_names"`
	PartNames        map[int]string        `json:"part_names"`
	ImageSize        models.ImageSize      `json:"image_size"`
}

// AnalyzeDetections runs the correlation on detections supplied in the request body.
func (h *Handler) AnalyzeDetections(c *gin.Context) {
	var req DetectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	damage, err := models.ParseDetections(req.DamageDetections, true)
	if err != nil {
		h.fail(c, fmt.Errorf("damage_detections: %w", err), "Invalid damage detections")
		return
	}
	parts, err := models.ParseDetections(req.PartDetections, false)
	if err != nil {
		h.fail(c, fmt.Errorf("part_detections: %w", err), "Invalid part detections")
		return
	}

	result := h.analyzer.Analyze(
		&models.DetectionSet{Detections: damage, Names: req.DamageNames, ImageSize: req.ImageSize},
		&models.DetectionSet{Detections: parts, Names: req.PartNames, ImageSize: req.ImageSize},
		req.ImageSize,
	)

	analysis := models.NewAnalysis(uuid.New().String(), req.Filename, "", *result)
	if err := h.save(c.Request.Context(), analysis); err != nil {
		h.fail(c, err, "Failed to save analysis")
		return
	}

	c.JSON(http.StatusOK, analysis)
}

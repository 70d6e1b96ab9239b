// Package analyzer runs the damage and part detectors on an image and turns their
// output into an AnalysisResult.
package analyzer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"autodamage/detector"
	"autodamage/matching"
	"autodamage/models"
	"autodamage/report"
)

type Service struct {
	damage    detector.Detector
	parts     detector.Detector
	assembler *report.Assembler
	minIoU    float64
	logger    *zap.Logger
}

func New(damage, parts detector.Detector, assembler *report.Assembler, minIoU float64, logger *zap.Logger) *Service {
	return &Service{
		damage:    damage,
		parts:     parts,
		assembler: assembler,
		minIoU:    minIoU,
		logger:    logger.Named("analyzer"),
	}
}

// AnalyzeImage runs both detectors in parallel and analyzes their output.
func (s *Service) AnalyzeImage(ctx context.Context, imagePath string) (*models.AnalysisResult, error) {
	var damageSet, partSet *models.DetectionSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set, err := s.damage.Detect(gctx, imagePath)
		if err != nil {
			return fmt.Errorf("detect damages: %w", err)
		}
		damageSet = set
		return nil
	})
	g.Go(func() error {
		set, err := s.parts.Detect(gctx, imagePath)
		if err != nil {
			return fmt.Errorf("detect parts: %w", err)
		}
		partSet = set
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("detection failed", zap.String("image", imagePath), zap.Error(err))
		return nil, err
	}

	size := damageSet.ImageSize
	if size == (models.ImageSize{}) {
		size = partSet.ImageSize
	}

	return s.Analyze(damageSet, partSet, size), nil
}

// Analyze correlates already detected damages and parts.
func (s *Service) Analyze(damage, parts *models.DetectionSet, size models.ImageSize) *models.AnalysisResult {
	pairs := matching.Match(damage.Detections, parts.Detections, s.minIoU)
	result := s.assembler.Build(damage, parts, pairs, size)

	s.logger.Info("analysis complete",
		zap.Int("damages", result.Summary.TotalDamages),
		zap.Int("parts", len(result.Parts)),
		zap.Int("affected_parts", result.Summary.AffectedParts),
		zap.Float64("average_severity", result.Summary.AverageSeverity),
		zap.String("risk_level", string(result.Summary.RiskLevel)),
	)

	return &result
}

// Package detector provides the damage and part detectors the analyzer depends on.
// The analyzer only sees the Detector interface, so a model process, a random mock or a
// fixed set can stand behind it.
package detector

import (
	"context"

	"autodamage/models"
)

// Kind tells which of the two detection streams a detector produces.
type Kind string

const (
	KindDamage Kind = "damage"
	KindParts  Kind = "parts"
)

// RequiresConfidence reports whether detections of this kind must carry a confidence.
func (k Kind) RequiresConfidence() bool {
	return k == KindDamage
}

// Detector finds regions of one kind in the image stored at imagePath.
type Detector interface {
	Detect(ctx context.Context, imagePath string) (*models.DetectionSet, error)
}

// StaticDetector always returns the same result. Useful for tests and for replaying
// detections produced elsewhere.
type StaticDetector struct {
	Set *models.DetectionSet
	Err error
}

func (d *StaticDetector) Detect(ctx context.Context, imagePath string) (*models.DetectionSet, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Set == nil {
		return &models.DetectionSet{}, nil
	}
	return d.Set, nil
}

var (
	_ Detector = (*StaticDetector)(nil)
	_ Detector = (*ExecDetector)(nil)
	_ Detector = (*RandomDetector)(nil)
)

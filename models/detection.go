package models

import (
	"errors"
	"fmt"
	"strconv"

	"autodamage/geometry"
)

// ErrInvalidInput marks input whose shape breaks the detector contract.
var ErrInvalidInput = errors.New("invalid input")

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detection is one region emitted by a detector.
type Detection struct {
	Box        geometry.Box `json:"box"`
	ClassID    int          `json:"class_id"`
	Confidence float64      `json:"confidence"`
}

// DetectionSet is the full output of one detector for one image, together with the
// detector's own class-id → name table.
type DetectionSet struct {
	Detections []Detection    `json:"detections"`
	Names      map[int]string `json:"names"`
	ImageSize  ImageSize      `json:"image_size"`
}

// ClassName resolves a class id through the set's name table, falling back to the
// decimal id.
func (s *DetectionSet) ClassName(classID int) string {
	if name, ok := s.Names[classID]; ok {
		return name
	}
	return strconv.Itoa(classID)
}

// RawDetection is the wire form of a detection. Pointers let missing fields be told
// apart from zero values.
type RawDetection struct {
	Box        *geometry.Box `json:"box"`
	ClassID    *int          `json:"class_id"`
	Confidence *float64      `json:"confidence"`
}

// RawDetectionSet is the wire form of a DetectionSet.
type RawDetectionSet struct {
	Detections []RawDetection `json:"detections"`
	Names      map[int]string `json:"names"`
	ImageSize  ImageSize      `json:"image_size"`
}

// Parse checks the raw detections and converts them. Confidence is mandatory only when
// requireConfidence is set (damage detectors); part detections may omit it.
func (r *RawDetectionSet) Parse(requireConfidence bool) (*DetectionSet, error) {
	detections, err := ParseDetections(r.Detections, requireConfidence)
	if err != nil {
		return nil, err
	}

	return &DetectionSet{
		Detections: detections,
		Names:      r.Names,
		ImageSize:  r.ImageSize,
	}, nil
}

// ParseDetections converts a list of raw detections, rejecting missing fields.
func ParseDetections(raw []RawDetection, requireConfidence bool) ([]Detection, error) {
	detections := make([]Detection, 0, len(raw))

	for i, rd := range raw {
		if rd.Box == nil {
			return nil, fmt.Errorf("detection %d: missing box: %w", i, ErrInvalidInput)
		}
		if rd.ClassID == nil {
			return nil, fmt.Errorf("detection %d: missing class_id: %w", i, ErrInvalidInput)
		}

		d := Detection{Box: *rd.Box, ClassID: *rd.ClassID}
		switch {
		case rd.Confidence != nil:
			if *rd.Confidence < 0 || *rd.Confidence > 1 {
				return nil, fmt.Errorf("detection %d: confidence %v outside [0,1]: %w", i, *rd.Confidence, ErrInvalidInput)
			}
			d.Confidence = *rd.Confidence
		case requireConfidence:
			return nil, fmt.Errorf("detection %d: missing confidence: %w", i, ErrInvalidInput)
		}

		detections = append(detections, d)
	}

	return detections, nil
}

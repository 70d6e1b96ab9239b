package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodamage/geometry"
)

func TestRawDetectionSet_Parse(t *testing.T) {
	data := `{
		"detections": [
			{"box": [1, 2, 3, 4], "class_id": 2, "confidence": 0.75},
			{"box": [10, 10, 5, 5], "class_id": 0, "confidence": 0}
		],
		"names": {"0": "crack", "2": "glass_shatter"},
		"image_size": {"width": 640, "height": 480}
	}`

	var raw RawDetectionSet
	require.NoError(t, json.Unmarshal([]byte(data), &raw))

	set, err := raw.Parse(true)
	require.NoError(t, err)
	require.Len(t, set.Detections, 2)

	assert.Equal(t, geometry.Box{1, 2, 3, 4}, set.Detections[0].Box)
	assert.Equal(t, 2, set.Detections[0].ClassID)
	assert.Equal(t, 0.75, set.Detections[0].Confidence)
	// malformed boxes pass through untouched
	assert.Equal(t, geometry.Box{10, 10, 5, 5}, set.Detections[1].Box)
	assert.Equal(t, ImageSize{Width: 640, Height: 480}, set.ImageSize)
	assert.Equal(t, "glass_shatter", set.ClassName(2))
}

func TestParseDetections_MissingFields(t *testing.T) {
	box := geometry.Box{0, 0, 1, 1}
	class := 1
	conf := 0.5
	tooHigh := 1.5

	tests := []struct {
		name              string
		raw               RawDetection
		requireConfidence bool
	}{
		{"missing box", RawDetection{ClassID: &class, Confidence: &conf}, true},
		{"missing class", RawDetection{Box: &box, Confidence: &conf}, true},
		{"missing confidence", RawDetection{Box: &box, ClassID: &class}, true},
		{"confidence out of range", RawDetection{Box: &box, ClassID: &class, Confidence: &tooHigh}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDetections([]RawDetection{tt.raw}, tt.requireConfidence)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseDetections_PartsWithoutConfidence(t *testing.T) {
	box := geometry.Box{0, 0, 1, 1}
	class := 3

	detections, err := ParseDetections([]RawDetection{{Box: &box, ClassID: &class}}, false)
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, 0.0, detections[0].Confidence)
}

func TestParseDetections_Empty(t *testing.T) {
	detections, err := ParseDetections(nil, true)
	require.NoError(t, err)
	assert.NotNil(t, detections)
	assert.Empty(t, detections)
}

func TestDetectionSet_ClassNameFallback(t *testing.T) {
	set := DetectionSet{Names: map[int]string{0: "dent"}}

	assert.Equal(t, "dent", set.ClassName(0))
	assert.Equal(t, "7", set.ClassName(7))
}

func TestNewAnalysis_CopiesSummary(t *testing.T) {
	result := AnalysisResult{
		Summary: Summary{TotalDamages: 3, AffectedParts: 2, AverageSeverity: 3.3, RiskLevel: RiskMedium},
	}

	a := NewAnalysis("id-1", "car.jpg", "uploads/id-1.jpg", result)
	assert.Equal(t, 3, a.TotalDamages)
	assert.Equal(t, 2, a.AffectedParts)
	assert.Equal(t, 3.3, a.AverageSeverity)
	assert.Equal(t, RiskMedium, a.RiskLevel)
	assert.Equal(t, "car.jpg", a.ListItem().Filename)
	assert.Equal(t, result.Summary, a.ListItem().Summary)
}

package models

import "autodamage/geometry"

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// DamageRecord is one damage detection, optionally tied to the part it sits on.
type DamageRecord struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	TypeLabel   string        `json:"type_label"`
	Confidence  float64       `json:"confidence"` // percent, one decimal
	Severity    int           `json:"severity"`   // 1..5
	Box         geometry.Box  `json:"box"`
	Part        *string       `json:"part"`
	PartLabel   *string       `json:"part_label"`
	PartBox     *geometry.Box `json:"part_box"`
	IoUWithPart float64       `json:"iou_with_part"`
	AreaRatio   *float64      `json:"area_ratio"` // damage area / part area
}

type PartRecord struct {
	Name      string       `json:"name"`
	NameLabel string       `json:"name_label"`
	Box       geometry.Box `json:"box"`
}

type Summary struct {
	TotalDamages    int       `json:"total_damages"`
	AffectedParts   int       `json:"affected_parts"`
	AverageSeverity float64   `json:"average_severity"`
	RiskLevel       RiskLevel `json:"risk_level"`
	RiskLabel       string    `json:"risk_label"`
}

// AnalysisResult is everything derived from one pair of detection sets.
type AnalysisResult struct {
	Damages   []DamageRecord `json:"damages"`
	Parts     []PartRecord   `json:"parts"`
	Summary   Summary        `json:"summary"`
	ImageSize ImageSize      `json:"image_size"`
}

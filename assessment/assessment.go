// Package assessment reduces the damage records of one image to a vehicle-level summary.
package assessment

import "autodamage/models"

// Risk tier thresholds. A tier applies when either its severity or its count bound is met,
// checked from High down.
const (
	HighSeverity   = 4.0
	HighCount      = 4
	MediumSeverity = 2.5
	MediumCount    = 2
)

// Summarize computes totals, the number of distinct matched part categories, the mean
// severity (one decimal, 0 for no damages) and the risk tier.
func Summarize(damages []models.DamageRecord) models.Summary {
	total := len(damages)

	parts := make(map[string]struct{})
	sum := 0
	for _, d := range damages {
		sum += d.Severity
		if d.Part != nil {
			parts[*d.Part] = struct{}{}
		}
	}

	avg := models.Round(float64(sum)/float64(max(1, total)), 1)

	return models.Summary{
		TotalDamages:    total,
		AffectedParts:   len(parts),
		AverageSeverity: avg,
		RiskLevel:       RiskLevel(avg, total),
	}
}

// RiskLevel classifies a vehicle from its rounded average severity and damage count.
func RiskLevel(averageSeverity float64, totalDamages int) models.RiskLevel {
	switch {
	case averageSeverity >= HighSeverity || totalDamages >= HighCount:
		return models.RiskHigh
	case averageSeverity >= MediumSeverity || totalDamages >= MediumCount:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

package models

import (
	"path"
	"path/filepath"
	"time"
)

// UploadsPath is the URL prefix uploaded photos are served under.
const UploadsPath = "/uploads"

// Analysis is a stored AnalysisResult. Summary columns are duplicated out of Results so
// that statistics can be computed in SQL.
type Analysis struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	Filename        string         `json:"filename"`
	ImagePath       string         `json:"-"`
	ImageURL        string         `json:"image_url,omitempty"`
	TotalDamages    int            `json:"-"`
	AffectedParts   int            `json:"-"`
	AverageSeverity float64        `json:"-"`
	RiskLevel       RiskLevel      `json:"-" gorm:"index"`
	Results         AnalysisResult `json:"results" gorm:"serializer:json"`
	CreatedAt       time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time      `json:"-"`
}

// NewAnalysis wraps a result for storage.
func NewAnalysis(id, filename, imagePath string, result AnalysisResult) *Analysis {
	return &Analysis{
		ID:              id,
		Filename:        filename,
		ImagePath:       imagePath,
		ImageURL:        imageURL(imagePath),
		TotalDamages:    result.Summary.TotalDamages,
		AffectedParts:   result.Summary.AffectedParts,
		AverageSeverity: result.Summary.AverageSeverity,
		RiskLevel:       result.Summary.RiskLevel,
		Results:         result,
	}
}

func imageURL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	return path.Join(UploadsPath, filepath.Base(imagePath))
}

// AnalysisListItem is the history view of an analysis.
type AnalysisListItem struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Filename  string    `json:"filename"`
	Summary   Summary   `json:"summary"`
}

func (a *Analysis) ListItem() AnalysisListItem {
	return AnalysisListItem{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Filename:  a.Filename,
		Summary:   a.Results.Summary,
	}
}

// Statistics aggregates over all stored analyses.
type Statistics struct {
	TotalAnalyses   int64               `json:"total_analyses"`
	TotalDamages    int64               `json:"total_damages"`
	AverageSeverity float64             `json:"average_severity"`
	ByRiskLevel     map[RiskLevel]int64 `json:"by_risk_level"`
}

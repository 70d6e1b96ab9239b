// Package report assembles the AnalysisResult handed to storage and clients.
package report

import (
	"github.com/google/uuid"

	"autodamage/assessment"
	"autodamage/catalog"
	"autodamage/geometry"
	"autodamage/matching"
	"autodamage/models"
)

// ShortIDLength is the length of a damage record id.
const ShortIDLength = 8

// IDFunc returns a candidate damage record id.
type IDFunc func() string

type Option func(*Assembler)

// WithIDFunc replaces the random id source.
func WithIDFunc(f IDFunc) Option {
	return func(a *Assembler) {
		a.newID = f
	}
}

type Assembler struct {
	catalog *catalog.Catalog
	newID   IDFunc
}

func NewAssembler(c *catalog.Catalog, opts ...Option) *Assembler {
	a := &Assembler{
		catalog: c,
		newID:   shortUUID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func shortUUID() string {
	return uuid.NewString()[:ShortIDLength]
}

// Build turns matched detections into an AnalysisResult. pairs must come from
// matching.Match over damage.Detections and parts.Detections.
func (a *Assembler) Build(damage, parts *models.DetectionSet, pairs []matching.Pair, size models.ImageSize) models.AnalysisResult {
	used := make(map[string]struct{}, len(pairs))
	damages := make([]models.DamageRecord, 0, len(pairs))

	for _, p := range pairs {
		d := damage.Detections[p.DamageIndex]
		category := damage.ClassName(d.ClassID)

		record := models.DamageRecord{
			ID:          a.uniqueID(used),
			Type:        category,
			TypeLabel:   a.catalog.DamageLabel(category),
			Confidence:  models.Round(d.Confidence*100, 1),
			Severity:    a.catalog.Severity(category),
			Box:         d.Box,
			IoUWithPart: models.Round(p.IoU, 3),
		}

		if p.Matched() {
			part := parts.Detections[p.PartIndex]
			name := parts.ClassName(part.ClassID)
			label := a.catalog.PartLabel(name)
			box := part.Box
			ratio := models.Round(geometry.Area(d.Box)/(geometry.Area(part.Box)+geometry.Epsilon), 3)

			record.Part = &name
			record.PartLabel = &label
			record.PartBox = &box
			record.AreaRatio = &ratio
		}

		damages = append(damages, record)
	}

	partRecords := make([]models.PartRecord, 0, len(parts.Detections))
	for _, part := range parts.Detections {
		name := parts.ClassName(part.ClassID)
		partRecords = append(partRecords, models.PartRecord{
			Name:      name,
			NameLabel: a.catalog.PartLabel(name),
			Box:       part.Box,
		})
	}

	summary := assessment.Summarize(damages)
	summary.RiskLabel = a.catalog.RiskLabel(summary.RiskLevel)

	return models.AnalysisResult{
		Damages:   damages,
		Parts:     partRecords,
		Summary:   summary,
		ImageSize: size,
	}
}

// uniqueID draws ids until one is unused within the current result.
func (a *Assembler) uniqueID(used map[string]struct{}) string {
	for {
		id := a.newID()
		if _, ok := used[id]; !ok {
			used[id] = struct{}{}
			return id
		}
	}
}

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodamage/geometry"
	"autodamage/models"
)

func det(x1, y1, x2, y2 float64) models.Detection {
	return models.Detection{Box: geometry.Box{x1, y1, x2, y2}}
}

func TestMatch_PicksHighestOverlap(t *testing.T) {
	damage := det(0, 0, 10, 10)
	// a part twice as wide as the damage overlaps it at 0.5
	weak := det(0, 0, 10, 100)  // 100 / 1000 = 0.1 -> below
	strong := det(0, 0, 20, 10) // 100 / 200 = 0.5

	pairs := Match([]models.Detection{damage}, []models.Detection{weak, strong}, DefaultMinIoU)
	require.Len(t, pairs, 1)

	assert.Equal(t, 1, pairs[0].PartIndex)
	assert.True(t, pairs[0].Matched())
	assert.InDelta(t, 0.5, pairs[0].IoU, 1e-6)
}

func TestMatch_PrefersHigherOfTwoAcceptable(t *testing.T) {
	damage := det(0, 0, 30, 10)
	// part a: 0,0,100,10 -> inter 300, union 1000 -> 0.3
	// part b: 0,0,60,10  -> inter 300, union 600  -> 0.5
	a := det(0, 0, 100, 10)
	b := det(0, 0, 60, 10)

	pairs := Match([]models.Detection{damage}, []models.Detection{a, b}, DefaultMinIoU)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].PartIndex)
	assert.InDelta(t, 0.5, pairs[0].IoU, 1e-6)

	pairs = Match([]models.Detection{damage}, []models.Detection{b, a}, DefaultMinIoU)
	assert.Equal(t, 0, pairs[0].PartIndex)
}

func TestMatch_TieKeepsFirstPart(t *testing.T) {
	damage := det(0, 0, 10, 10)
	// both parts give inter 100, union 500 -> 0.2
	left := det(0, 0, 50, 10)
	down := det(0, 0, 10, 50)

	pairs := Match([]models.Detection{damage}, []models.Detection{left, down}, DefaultMinIoU)
	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].PartIndex)
	assert.InDelta(t, 0.2, pairs[0].IoU, 1e-6)

	pairs = Match([]models.Detection{damage}, []models.Detection{down, left}, DefaultMinIoU)
	assert.Equal(t, 0, pairs[0].PartIndex)
}

func TestMatch_BelowThresholdKeepsIoU(t *testing.T) {
	damage := det(0, 0, 10, 10)
	part := det(0, 0, 10, 200) // 100 / 2000 = 0.05

	pairs := Match([]models.Detection{damage}, []models.Detection{part}, DefaultMinIoU)
	require.Len(t, pairs, 1)
	assert.False(t, pairs[0].Matched())
	assert.Equal(t, NoPart, pairs[0].PartIndex)
	assert.InDelta(t, 0.05, pairs[0].IoU, 1e-6)
}

func TestMatch_ThresholdIsStrict(t *testing.T) {
	damage := det(0, 0, 10, 10)
	part := det(0, 0, 10, 40) // 100 / 400 = 0.25

	pairs := Match([]models.Detection{damage}, []models.Detection{part}, 0.3)
	assert.False(t, pairs[0].Matched())

	iou := geometry.IoU(damage.Box, part.Box)
	pairs = Match([]models.Detection{damage}, []models.Detection{part}, iou)
	assert.False(t, pairs[0].Matched(), "an IoU equal to the threshold is not accepted")
}

func TestMatch_ManyToOne(t *testing.T) {
	door := det(0, 0, 20, 20)
	damages := []models.Detection{det(0, 0, 10, 10), det(10, 10, 20, 20)}

	pairs := Match(damages, []models.Detection{door}, DefaultMinIoU)
	require.Len(t, pairs, 2)
	assert.Equal(t, 0, pairs[0].PartIndex)
	assert.Equal(t, 0, pairs[1].PartIndex)
	assert.Equal(t, 0, pairs[0].DamageIndex)
	assert.Equal(t, 1, pairs[1].DamageIndex)
}

func TestMatch_NoParts(t *testing.T) {
	pairs := Match([]models.Detection{det(0, 0, 1, 1), det(2, 2, 3, 3)}, nil, DefaultMinIoU)
	require.Len(t, pairs, 2)
	for _, p := range pairs {
		assert.False(t, p.Matched())
		assert.Equal(t, 0.0, p.IoU)
	}
}

func TestMatch_NoDamages(t *testing.T) {
	assert.Empty(t, Match(nil, []models.Detection{det(0, 0, 1, 1)}, DefaultMinIoU))
	assert.Empty(t, Match(nil, nil, DefaultMinIoU))
}

// Package matching assigns every damage detection to the part detection it overlaps most.
//
// The assignment is greedy and per damage: several damages may land on the same part and
// no global optimum is sought. When two parts overlap a damage equally, the one that comes
// first in the part list is kept. Stored reports depend on this ordering, so it must not be
// replaced by a different tie-break or a one-to-one assignment.
package matching

import (
	"autodamage/geometry"
	"autodamage/models"
)

// DefaultMinIoU is the overlap a part must exceed to be accepted.
const DefaultMinIoU = 0.1

// NoPart is the PartIndex of an unmatched damage.
const NoPart = -1

// Pair links damages[DamageIndex] to parts[PartIndex].
// IoU is the best overlap seen, kept even when it is below the threshold.
type Pair struct {
	DamageIndex int
	PartIndex   int
	IoU         float64
}

func (p Pair) Matched() bool {
	return p.PartIndex != NoPart
}

// Match returns one Pair per damage, in damage order.
func Match(damages, parts []models.Detection, minIoU float64) []Pair {
	pairs := make([]Pair, 0, len(damages))

	for i, damage := range damages {
		bestIoU := 0.0
		bestPart := NoPart

		for j, part := range parts {
			iou := geometry.IoU(damage.Box, part.Box)
			if iou > bestIoU {
				bestIoU = iou
				bestPart = j
			}
		}

		if bestIoU <= minIoU {
			bestPart = NoPart
		}

		pairs = append(pairs, Pair{
			DamageIndex: i,
			PartIndex:   bestPart,
			IoU:         bestIoU,
		})
	}

	return pairs
}

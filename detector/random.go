package detector

import (
	"context"
	"maps"
	"math/rand"
	"sync"

	"autodamage/geometry"
	"autodamage/models"
)

var (
	damageNames = map[int]string{
		0: "crack",
		1: "dent",
		2: "glass_shatter",
		3: "lamp_broken",
		4: "scratch",
		5: "tire_flat",
	}
	partNames = map[int]string{
		0: "back_bumper",
		1: "front_bumper",
		2: "front_door",
		3: "back_door",
		4: "hood",
		5: "front_light",
		6: "wheel",
		7: "trunk",
	}
)

// RandomDetector makes up plausible detections for running the service without models.
type RandomDetector struct {
	kind   Kind
	width  int
	height int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomDetector(kind Kind, seed int64, width, height int) *RandomDetector {
	return &RandomDetector{
		kind:   kind,
		width:  width,
		height: height,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

func (d *RandomDetector) Detect(ctx context.Context, imagePath string) (*models.DetectionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	names := damageNames
	count := d.rnd.Intn(5)
	// parts are large, damages small
	minSide, maxSide := 0.03, 0.15
	if d.kind == KindParts {
		names = partNames
		count = 2 + d.rnd.Intn(4)
		minSide, maxSide = 0.2, 0.5
	}

	detections := make([]models.Detection, 0, count)
	for i := 0; i < count; i++ {
		w := float64(d.width) * (minSide + d.rnd.Float64()*(maxSide-minSide))
		h := float64(d.height) * (minSide + d.rnd.Float64()*(maxSide-minSide))
		x := d.rnd.Float64() * (float64(d.width) - w)
		y := d.rnd.Float64() * (float64(d.height) - h)

		detections = append(detections, models.Detection{
			Box:        geometry.Box{x, y, x + w, y + h},
			ClassID:    d.rnd.Intn(len(names)),
			Confidence: 0.3 + d.rnd.Float64()*0.65,
		})
	}

	return &models.DetectionSet{
		Detections: detections,
		Names:      maps.Clone(names),
		ImageSize:  models.ImageSize{Width: d.width, Height: d.height},
	}, nil
}

package simulate

import (
	"math"
	"math/rand"
	"time"

	"github.com/vitaltrace/vitaltrace/pkg/types"
)

// Value ranges for generated vitals.
const (
	hrMin, hrMax     = 60, 140
	spo2Min, spo2Max = 85.0, 100.0
	tempMin, tempMax = 36.0, 40.5
)

// Generator produces random but realistic readings.
type Generator struct {
	rng *rand.Rand
	now func() time.Time // injectable for deterministic tests
}

// NewGenerator creates a Generator. seed == 0 seeds from the clock.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// Generate returns one synthetic reading stamped with the current time.
func (g *Generator) Generate() types.Reading {
	return types.Reading{
		Timestamp: float64(g.now().UnixNano()) / 1e9,
		HR:        hrMin + g.rng.Intn(hrMax-hrMin+1),
		SpO2:      round1(spo2Min + g.rng.Float64()*(spo2Max-spo2Min)),
		Temp:      round1(tempMin + g.rng.Float64()*(tempMax-tempMin)),
	}
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package classify

import "github.com/vitaltrace/vitaltrace/pkg/types"

// Cause strings reported for each rule. These are part of the external
// contract (alert text, observer events, ingest responses).
const (
	CauseHeartRateSpike = "Heart rate spike detected"
	CauseOxygenDrop     = "Severe oxygen drop detected"
	CauseHighFever      = "High fever detected"
)

// Default thresholds.
const (
	DefaultMaxHeartRate = 120
	DefaultMinSpO2      = 88.0
	DefaultMaxTemp      = 39.0
)

// Thresholds holds the rule boundaries. The zero value is not usable;
// construct via DefaultThresholds or from config.
type Thresholds struct {
	// MaxHeartRate is the heart rate (bpm) above which a reading is fatal.
	MaxHeartRate int

	// MinSpO2 is the oxygen saturation (%) below which a reading is fatal.
	MinSpO2 float64

	// MaxTemp is the body temperature (°C) above which a reading is fatal.
	MaxTemp float64
}

// DefaultThresholds returns the stock rule boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxHeartRate: DefaultMaxHeartRate,
		MinSpO2:      DefaultMinSpO2,
		MaxTemp:      DefaultMaxTemp,
	}
}

// Classifier evaluates the threshold rules against readings. It is
// immutable after construction; swap the whole value to change thresholds.
type Classifier struct {
	t Thresholds
}

// New creates a Classifier with the given thresholds.
func New(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

// Classify returns the status for r and, when fatal, the cause of the
// first matching rule. Pure function: no side effects, no error paths.
func (c *Classifier) Classify(r types.Reading) (types.Status, string) {
	switch {
	case r.HR > c.t.MaxHeartRate:
		return types.StatusFatal, CauseHeartRateSpike
	case r.SpO2 < c.t.MinSpO2:
		return types.StatusFatal, CauseOxygenDrop
	case r.Temp > c.t.MaxTemp:
		return types.StatusFatal, CauseHighFever
	default:
		return types.StatusNormal, ""
	}
}

package classify_test

import (
	"testing"

	"github.com/vitaltrace/vitaltrace/pkg/types"
	"github.com/vitaltrace/vitaltrace/server/internal/classify"
)

func TestClassify_DefaultThresholds(t *testing.T) {
	c := classify.New(classify.DefaultThresholds())

	tests := []struct {
		name       string
		reading    types.Reading
		wantStatus types.Status
		wantCause  string
	}{
		{
			name:       "all vitals in range",
			reading:    types.Reading{HR: 100, SpO2: 95, Temp: 37},
			wantStatus: types.StatusNormal,
		},
		{
			name:       "heart rate spike",
			reading:    types.Reading{HR: 125, SpO2: 95, Temp: 37},
			wantStatus: types.StatusFatal,
			wantCause:  classify.CauseHeartRateSpike,
		},
		{
			name:       "oxygen drop",
			reading:    types.Reading{HR: 90, SpO2: 85, Temp: 37},
			wantStatus: types.StatusFatal,
			wantCause:  classify.CauseOxygenDrop,
		},
		{
			name:       "high fever",
			reading:    types.Reading{HR: 90, SpO2: 95, Temp: 39.5},
			wantStatus: types.StatusFatal,
			wantCause:  classify.CauseHighFever,
		},
		{
			name:       "all thresholds breached reports heart rate first",
			reading:    types.Reading{HR: 130, SpO2: 80, Temp: 40},
			wantStatus: types.StatusFatal,
			wantCause:  classify.CauseHeartRateSpike,
		},
		{
			name:       "oxygen and fever breached reports oxygen first",
			reading:    types.Reading{HR: 90, SpO2: 80, Temp: 40},
			wantStatus: types.StatusFatal,
			wantCause:  classify.CauseOxygenDrop,
		},
		{
			name:       "boundary values are not fatal",
			reading:    types.Reading{HR: 120, SpO2: 88, Temp: 39},
			wantStatus: types.StatusNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, cause := c.Classify(tt.reading)
			if status != tt.wantStatus {
				t.Errorf("status: got %q, want %q", status, tt.wantStatus)
			}
			if cause != tt.wantCause {
				t.Errorf("cause: got %q, want %q", cause, tt.wantCause)
			}
		})
	}
}

func TestClassify_CustomThresholds(t *testing.T) {
	c := classify.New(classify.Thresholds{MaxHeartRate: 100, MinSpO2: 90, MaxTemp: 38})

	status, cause := c.Classify(types.Reading{HR: 110, SpO2: 95, Temp: 37})
	if status != types.StatusFatal || cause != classify.CauseHeartRateSpike {
		t.Errorf("got (%q, %q), want fatal heart rate spike", status, cause)
	}
}

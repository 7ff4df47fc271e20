package types

// Status classifies a reading as produced by the threshold rules.
type Status string

const (
	StatusNormal Status = "normal"
	StatusFatal  Status = "fatal"
)

// Reading is one vital-sign sample as received from a sensor. Immutable
// once received; field values are never rewritten after ingestion.
type Reading struct {
	// Timestamp is seconds since the Unix epoch, with sub-second precision.
	Timestamp float64 `json:"timestamp"`

	// HR is the heart rate in beats per minute.
	HR int `json:"hr"`

	// SpO2 is blood oxygen saturation in percent.
	SpO2 float64 `json:"spo2"`

	// Temp is body temperature in degrees Celsius.
	Temp float64 `json:"temp"`
}

// Record is a Reading plus its derived status, cause, and fingerprint, as
// durably stored. Records are append-only: created exactly once per ingested
// Reading, never updated or deleted.
type Record struct {
	ID int64

	Reading

	Status Status

	// Cause is the human-readable reason the reading was flagged fatal.
	// Empty for normal readings.
	Cause string

	// Fingerprint is the lowercase 64-char hex SHA-256 of the Reading's
	// canonical serialization.
	Fingerprint string
}

// Event is the enriched message pushed to live observers: the Reading's
// fields plus the classification cause, and the status alongside.
type Event struct {
	Data   EventData `json:"data"`
	Status Status    `json:"status"`
}

// EventData is the payload half of an Event.
type EventData struct {
	Timestamp float64 `json:"timestamp"`
	HR        int     `json:"hr"`
	SpO2      float64 `json:"spo2"`
	Temp      float64 `json:"temp"`
	Cause     *string `json:"cause"`
}

// NewEvent builds the observer-facing event for a classified reading.
// cause must be empty exactly when status is StatusNormal.
func NewEvent(r Reading, status Status, cause string) Event {
	ev := Event{
		Data: EventData{
			Timestamp: r.Timestamp,
			HR:        r.HR,
			SpO2:      r.SpO2,
			Temp:      r.Temp,
		},
		Status: status,
	}
	if cause != "" {
		ev.Data.Cause = &cause
	}
	return ev
}

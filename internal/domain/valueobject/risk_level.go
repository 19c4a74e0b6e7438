package valueobject

import "fmt"

// RiskLevel is an immutable value object classifying a fraud score.
type RiskLevel struct {
	value string
}

var (
	RiskLevelLow      = RiskLevel{value: "LOW"}
	RiskLevelMedium   = RiskLevel{value: "MEDIUM"}
	RiskLevelHigh     = RiskLevel{value: "HIGH"}
	RiskLevelCritical = RiskLevel{value: "CRITICAL"}

	// RiskLevelUnknown marks an analysis that failed before it could be scored.
	RiskLevelUnknown = RiskLevel{value: "UNKNOWN"}
)

// Lower bounds of each band. Bands are closed below.
const (
	CriticalThreshold = 0.7
	HighThreshold     = 0.5
	MediumThreshold   = 0.3
)

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return RiskLevelLow, nil
	case "MEDIUM":
		return RiskLevelMedium, nil
	case "HIGH":
		return RiskLevelHigh, nil
	case "CRITICAL":
		return RiskLevelCritical, nil
	case "UNKNOWN":
		return RiskLevelUnknown, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

// RiskLevelFromScore maps a final score in [0,1] to its band.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return RiskLevelCritical
	case score >= HighThreshold:
		return RiskLevelHigh
	case score >= MediumThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// IsFraud reports whether the level is treated as fraud. MEDIUM is not.
func (r RiskLevel) IsFraud() bool {
	return r == RiskLevelHigh || r == RiskLevelCritical
}

// RaisesAlert reports whether an analysis at this level opens a fraud alert.
func (r RiskLevel) RaisesAlert() bool {
	return r.IsFraud()
}

func (r RiskLevel) String() string { return r.value }

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool { return r.value == "" }

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool { return r.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := RiskLevelFromString(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

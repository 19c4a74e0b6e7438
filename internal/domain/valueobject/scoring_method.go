package valueobject

import "fmt"

// ScoringMethod records which scorers contributed to a final score.
type ScoringMethod struct {
	value string
}

var (
	MethodHybrid    = ScoringMethod{value: "hybrid"}
	MethodRuleBased = ScoringMethod{value: "rule-based"}
)

// ScoringMethodFromString reconstructs a ScoringMethod.
func ScoringMethodFromString(s string) (ScoringMethod, error) {
	switch s {
	case "hybrid":
		return MethodHybrid, nil
	case "rule-based":
		return MethodRuleBased, nil
	default:
		return ScoringMethod{}, fmt.Errorf("invalid scoring method: %s", s)
	}
}

func (m ScoringMethod) String() string { return m.value }

// IsZero is true for failed analyses, which have no method.
func (m ScoringMethod) IsZero() bool { return m.value == "" }

// Description is the human-readable method label used in conclusions.
func (m ScoringMethod) Description() string {
	if m == MethodHybrid {
		return "Hybrid (70% ML + 30% Rules)"
	}
	return "Rule-Based Only"
}

// MarshalText implements encoding.TextMarshaler.
func (m ScoringMethod) MarshalText() ([]byte, error) {
	return []byte(m.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ScoringMethod) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*m = ScoringMethod{}
		return nil
	}
	parsed, err := ScoringMethodFromString(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

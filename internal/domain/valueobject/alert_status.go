package valueobject

import "fmt"

// AlertStatus is the review state of a fraud alert.
type AlertStatus struct {
	value string
}

var (
	AlertStatusPending   = AlertStatus{value: "PENDING"}
	AlertStatusReviewed  = AlertStatus{value: "REVIEWED"}
	AlertStatusResolved  = AlertStatus{value: "RESOLVED"}
	AlertStatusDismissed = AlertStatus{value: "DISMISSED"}
)

// AlertStatusFromString reconstructs an AlertStatus.
func AlertStatusFromString(s string) (AlertStatus, error) {
	switch s {
	case "PENDING":
		return AlertStatusPending, nil
	case "REVIEWED":
		return AlertStatusReviewed, nil
	case "RESOLVED":
		return AlertStatusResolved, nil
	case "DISMISSED":
		return AlertStatusDismissed, nil
	default:
		return AlertStatus{}, fmt.Errorf("invalid alert status: %s", s)
	}
}

// IsTerminal is true once an alert has been resolved or dismissed.
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusResolved || s == AlertStatusDismissed
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// PENDING -> REVIEWED -> RESOLVED | DISMISSED, and PENDING may close directly.
func (s AlertStatus) CanTransitionTo(next AlertStatus) bool {
	switch s {
	case AlertStatusPending:
		return next == AlertStatusReviewed || next.IsTerminal()
	case AlertStatusReviewed:
		return next.IsTerminal()
	default:
		return false
	}
}

func (s AlertStatus) String() string { return s.value }

// IsZero returns true if the AlertStatus has not been set.
func (s AlertStatus) IsZero() bool { return s.value == "" }

// MarshalText implements encoding.TextMarshaler.
func (s AlertStatus) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

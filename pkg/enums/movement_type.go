package enums

import "fmt"

// MovementType maps to the movement_type_enum enum in Postgres and classifies
// entries in the stock movement history.
type MovementType string

const (
	MovementTypeReceiving          MovementType = "receiving"
	MovementTypeReservation        MovementType = "reservation"
	MovementTypeRelease            MovementType = "release"
	MovementTypeAdjustmentIncrease MovementType = "adjustment_increase"
	MovementTypeAdjustmentDecrease MovementType = "adjustment_decrease"
)

var validMovementTypes = []MovementType{
	MovementTypeReceiving,
	MovementTypeReservation,
	MovementTypeRelease,
	MovementTypeAdjustmentIncrease,
	MovementTypeAdjustmentDecrease,
}

// String implements fmt.Stringer.
func (t MovementType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical movement type enum.
func (t MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}

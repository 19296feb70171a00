package enums

import "fmt"

// AdjustmentDirection tells the adjustment engine which way a manual
// stock correction moves the available quantity.
type AdjustmentDirection string

const (
	AdjustmentDirectionIncrease AdjustmentDirection = "increase"
	AdjustmentDirectionDecrease AdjustmentDirection = "decrease"
)

var validAdjustmentDirections = []AdjustmentDirection{
	AdjustmentDirectionIncrease,
	AdjustmentDirectionDecrease,
}

// String implements fmt.Stringer.
func (d AdjustmentDirection) String() string {
	return string(d)
}

// IsValid reports whether the direction is recognized.
func (d AdjustmentDirection) IsValid() bool {
	for _, candidate := range validAdjustmentDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseAdjustmentDirection converts a raw string into an AdjustmentDirection.
func ParseAdjustmentDirection(value string) (AdjustmentDirection, error) {
	for _, candidate := range validAdjustmentDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment direction %q", value)
}

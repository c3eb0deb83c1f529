package enums

import (
	"fmt"
	"strings"
)

// AdjustmentMode selects how an adjustment magnitude is interpreted.
type AdjustmentMode string

const (
	AdjustmentModeFixed      AdjustmentMode = "fixed"
	AdjustmentModePercentage AdjustmentMode = "percentage"
)

var validAdjustmentModes = []AdjustmentMode{
	AdjustmentModeFixed,
	AdjustmentModePercentage,
}

// String implements fmt.Stringer.
func (m AdjustmentMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known AdjustmentMode.
func (m AdjustmentMode) IsValid() bool {
	for _, candidate := range validAdjustmentModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAdjustmentMode converts raw input into an AdjustmentMode. The pricing UI
// labels percentage adjustments "dynamic", so that spelling is accepted too.
func ParseAdjustmentMode(value string) (AdjustmentMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "dynamic" {
		return AdjustmentModePercentage, nil
	}
	for _, candidate := range validAdjustmentModes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment mode %q", value)
}

// AdjustmentDirection selects whether the adjustment raises or lowers a price.
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

// IsValid reports whether the value is a known AdjustmentDirection.
func (d AdjustmentDirection) IsValid() bool {
	for _, candidate := range validAdjustmentDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseAdjustmentDirection converts raw input into an AdjustmentDirection.
func ParseAdjustmentDirection(value string) (AdjustmentDirection, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validAdjustmentDirections {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment direction %q", value)
}

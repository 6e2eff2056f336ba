package enums

import "fmt"

// PreparednessLevel is a self-reported readiness category, distinct from
// years of experience.
type PreparednessLevel string

const (
	PreparednessInitial      PreparednessLevel = "Initial"
	PreparednessBeginner     PreparednessLevel = "Beginner"
	PreparednessIntermediate PreparednessLevel = "Intermediate"
	PreparednessAdvanced     PreparednessLevel = "Advanced"
)

var validPreparednessLevels = []PreparednessLevel{
	PreparednessInitial,
	PreparednessBeginner,
	PreparednessIntermediate,
	PreparednessAdvanced,
}

// IsValid checks whether the given level matches the canonical enum.
func (p PreparednessLevel) IsValid() bool {
	for _, candidate := range validPreparednessLevels {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePreparednessLevel converts raw strings into PreparednessLevel.
func ParsePreparednessLevel(value string) (PreparednessLevel, error) {
	for _, candidate := range validPreparednessLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid preparedness level %q", value)
}

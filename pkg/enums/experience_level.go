package enums

import "fmt"

// ExperienceLevel buckets years of product-management experience.
type ExperienceLevel string

const (
	ExperienceLevel0To3 ExperienceLevel = "0-3"
	ExperienceLevel3To6 ExperienceLevel = "3-6"
	ExperienceLevel6To9 ExperienceLevel = "6-9"
	ExperienceLevel9Up  ExperienceLevel = "9+"
)

var validExperienceLevels = []ExperienceLevel{
	ExperienceLevel0To3,
	ExperienceLevel3To6,
	ExperienceLevel6To9,
	ExperienceLevel9Up,
}

// IsValid checks whether the given level matches the canonical enum.
func (e ExperienceLevel) IsValid() bool {
	for _, candidate := range validExperienceLevels {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseExperienceLevel converts raw strings into ExperienceLevel.
func ParseExperienceLevel(value string) (ExperienceLevel, error) {
	for _, candidate := range validExperienceLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid experience level %q", value)
}

package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Request bounds enforced by the request layer.
const (
	MinNameLength = 3
	MaxNameLength = 100
	MaxLayerID    = 1000
)

// ValidateName trims a requested definition or namespace name and checks
// its length.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinNameLength || n > MaxNameLength {
		return "", fmt.Errorf("%w: name must be %d to %d characters", ErrInvalidInput, MinNameLength, MaxNameLength)
	}
	return name, nil
}

// ValidateLayerID checks a requested layer id. When optional is set,
// AllLayers is accepted as well.
func ValidateLayerID(id int, optional bool) error {
	if optional && id == AllLayers {
		return nil
	}
	if id < 1 || id > MaxLayerID {
		return fmt.Errorf("%w: layer id must be between 1 and %d", ErrInvalidInput, MaxLayerID)
	}
	return nil
}

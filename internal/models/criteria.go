package models

import (
	"errors"
	"strings"
)

var ErrEmptyCriteria = errors.New("at least one platform and one role are required")

// Criteria captures the filters for a single scan. It is not modified once a scan starts.
type Criteria struct {
	Platforms []string `json:"platforms"`
	Roles     []string `json:"roles"`
	Regions   []string `json:"regions,omitempty"`
	Cities    []string `json:"cities,omitempty"`
	JobTypes  []string `json:"job_types,omitempty"`
}

// Validate reports ErrEmptyCriteria unless at least one platform and one role are non-blank.
func (c Criteria) Validate() error {
	if !anyNonBlank(c.Platforms) || !anyNonBlank(c.Roles) {
		return ErrEmptyCriteria
	}
	return nil
}

func anyNonBlank(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

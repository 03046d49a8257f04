package domain

import (
	"github.com/google/uuid"
)

// AssumptionPreset is a named, reusable AssumptionSet
type AssumptionPreset struct {
	ID          uuid.UUID
	Name        string
	Assumptions AssumptionSet
}

// Validate ensures the preset has a name and a valid assumption set
func (p *AssumptionPreset) Validate() error {
	if p.Name == "" {
		return NewValidationError("preset", "name", p.Name, "cannot be empty")
	}
	return p.Assumptions.validate("preset " + p.Name)
}

package validator

import (
	"github.com/askwhyharsh/geohunt/internal/location"
	"github.com/askwhyharsh/geohunt/internal/role"
)

type Validator interface {
	ValidateCoordinates(lat, lon float64) error
	ValidateRole(name string) (role.Role, error)
	ValidateDifficulty(name string) (role.Difficulty, error)
}

type validator struct{}

func NewValidator() Validator {
	return &validator{}
}

func (v *validator) ValidateCoordinates(lat, lon float64) error {
	return location.Coordinate{Latitude: lat, Longitude: lon}.Validate()
}

func (v *validator) ValidateRole(name string) (role.Role, error) {
	return role.Parse(name)
}

func (v *validator) ValidateDifficulty(name string) (role.Difficulty, error) {
	return role.ParseDifficulty(name)
}

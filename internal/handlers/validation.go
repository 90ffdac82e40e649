package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var skillLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
	"expert":       true,
}

// ValidSkillLevel backs the `skilllevel` binding tag.
func ValidSkillLevel(fl validator.FieldLevel) bool {
	return skillLevels[fl.Field().String()]
}

// RegisterValidators wires custom validations into gin's binding engine.
// Call once before routes are served.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("skilllevel", ValidSkillLevel)
	}
}

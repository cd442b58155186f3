package attendance

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	statusTag  = "status"
	statusText = "invalid attendance status"
)

// RegisterValidators registers this package's custom validation tags.
// core.InitValidators must have been called first.
func RegisterValidators() {
	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(statusTag, statusText)
}

// statusValidation checks that the provided status is in the closed set.
func statusValidation(fl validator.FieldLevel) bool {
	val := Status(fl.Field().String())
	for _, s := range Statuses {
		if val == s {
			return true
		}
	}
	return false
}

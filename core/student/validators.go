package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	gradeTag  = "grade"
	gradeText = "invalid grade; expected K or 1-8"
)

// RegisterValidators registers this package's custom validation tags.
// core.InitValidators must have been called first.
func RegisterValidators() {
	_ = core.Validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(gradeTag, gradeText)
}

// gradeValidation checks that the provided grade is one of Grades.
func gradeValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, g := range Grades {
		if val == g {
			return true
		}
	}
	return false
}

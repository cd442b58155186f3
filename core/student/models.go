package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
)

// Grades covers K-8.
var Grades = []string{"K", "1", "2", "3", "4", "5", "6", "7", "8"}

type (
	// Guardian is a student's primary contact.
	Guardian struct {
		Name  string      `json:"name"`
		Phone null.String `json:"phone"` // raw, as entered; normalized at dispatch time
		Email null.String `json:"email"`
	}

	Student struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Grade     string    `json:"grade"`
		IsActive  bool      `json:"is_active"`
		Guardian  Guardian  `json:"guardian"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}
)

// PrimaryPhone returns the guardian phone or ok=false when absent or blank.
func (s Student) PrimaryPhone() (string, bool) {
	if !s.Guardian.Phone.Valid {
		return "", false
	}
	phone := core.CleanString(s.Guardian.Phone.String)
	return phone, phone != ""
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name          string `json:"name" validate:"required"`
	Grade         string `json:"grade" validate:"required,grade"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Grade = core.CleanString(ns.Grade, true /* lower */)
	if ns.Grade == "k" {
		ns.Grade = "K"
	}
	ns.GuardianName = core.CleanString(ns.GuardianName)
	ns.GuardianPhone = core.CleanString(ns.GuardianPhone)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name          string  `json:"name"`
	Grade         string  `json:"grade" validate:"omitempty,grade"`
	IsActive      *bool   `json:"is_active"`
	GuardianName  *string `json:"guardian_name"`
	GuardianPhone *string `json:"guardian_phone"`
	GuardianEmail *string `json:"guardian_email" validate:"omitempty"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	grade := core.CleanString(us.Grade, true /* lower */)
	if grade == "k" {
		grade = "K"
	}
	if grade != "" {
		us.Grade = grade
	} else {
		us.Grade = orig.Grade
	}

	return core.Validate.Struct(us)
}

type QueryFilter struct {
	Search   string `query:"search"` // case-insensitive match on Student.Name or Guardian.Name
	Grade    string `query:"grade"`
	IsActive *bool  `query:"is_active"`
}

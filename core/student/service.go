package student

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
)

var ErrNotFound = errors.New("student not found")

type (
	Repository interface {
		CreateStudent(std Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(filter QueryFilter, orderings []core.DBOrdering) ([]Student, error)
		UpdateStudent(std Student, isActive *bool) (Student, error)
		DeleteStudentsByID(ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		ID:       uuid.New().String(),
		Name:     ns.Name,
		Grade:    ns.Grade,
		IsActive: true,
		Guardian: Guardian{
			Name:  ns.GuardianName,
			Phone: null.NewString(ns.GuardianPhone, ns.GuardianPhone != ""),
			Email: null.NewString(ns.GuardianEmail, ns.GuardianEmail != ""),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateStudent(std)
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) Filter(filter QueryFilter, orderings []core.DBOrdering) ([]Student, error) {
	return svc.repo.FilterStudents(filter, orderings)
}

func (svc *Service) Update(id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}

	std := Student{
		ID:        id,
		Name:      us.Name,
		Grade:     us.Grade,
		Guardian:  orig.Guardian,
		UpdatedAt: time.Now().UTC(),
	}
	if us.GuardianName != nil {
		std.Guardian.Name = *us.GuardianName
	}
	if us.GuardianPhone != nil {
		std.Guardian.Phone = null.NewString(*us.GuardianPhone, *us.GuardianPhone != "")
	}
	if us.GuardianEmail != nil {
		std.Guardian.Email = null.NewString(*us.GuardianEmail, *us.GuardianEmail != "")
	}
	return svc.repo.UpdateStudent(std, us.IsActive)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteStudentsByID(ids...)
}

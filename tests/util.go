package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/core/student"
)

func CreateStaff(
	t *testing.T,
	repo staff.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) staff.Staff {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	stf := staff.Staff{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := stf.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStaff() failed: %v", err)
		}
	}
	stf, err := repo.CreateStaff(stf)
	if err != nil {
		t.Fatalf("CreateStaff() failed: %v", err)
	}
	return stf
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, grade, guardianName, guardianPhone string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std := student.Student{
		ID:       uuid.New().String(),
		Name:     name,
		Grade:    grade,
		IsActive: true,
		Guardian: student.Guardian{
			Name:  guardianName,
			Phone: null.NewString(guardianPhone, guardianPhone != ""),
		},
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	std, err := repo.CreateStudent(std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateCourse(
	t *testing.T,
	repo attendance.Repository,
	title, grade string,
) attendance.Course {
	crs := attendance.Course{
		ID:        uuid.New().String(),
		Title:     title,
		Grade:     grade,
		CreatedAt: time.Now().UTC(),
	}
	crs, err := repo.CreateCourse(crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

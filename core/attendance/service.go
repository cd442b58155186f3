package attendance

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

var (
	ErrNotFound       = errors.New("no attendance record for this date")
	ErrCourseNotFound = errors.New("course not found")
)

type (
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		QueryAllCourses() ([]Course, error)
		GetCourseByID(id string) (Course, error)
		DeleteCoursesByID(ids ...string) error

		// GetDailyRecord assembles one day's record across all courses,
		// courses in title order. Returns ErrNotFound when the day has no entries.
		GetDailyRecord(date string) (DailyRecord, error)
		// SetCourseAttendance replaces one course's sheet for one day.
		SetCourseAttendance(date, courseID string, entries []Entry) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCourse(nc NewCourse) (Course, error) {
	crs := Course{
		ID:        uuid.New().String(),
		Title:     core.CleanString(nc.Title),
		Grade:     nc.Grade,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *Service) QueryCourses() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

func (svc *Service) GetCourseByID(id string) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) DeleteCourses(ids ...string) error {
	return svc.repo.DeleteCoursesByID(ids...)
}

func (svc *Service) GetDailyRecord(date string) (DailyRecord, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return DailyRecord{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date; expected YYYY-MM-DD"})
	}
	return svc.repo.GetDailyRecord(date)
}

// SetCourseAttendance records a course's sheet for a day; the student names
// on the stored entries are resolved by the repository at read time.
func (svc *Service) SetCourseAttendance(date, courseID string, sca SetCourseAttendance) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date; expected YYYY-MM-DD"})
	}
	if _, err := svc.repo.GetCourseByID(courseID); err != nil {
		return err
	}

	entries := make([]Entry, 0, len(sca.Entries))
	for _, e := range sca.Entries {
		entries = append(entries, Entry{StudentID: e.StudentID, Status: e.Status})
	}
	return svc.repo.SetCourseAttendance(date, courseID, entries)
}

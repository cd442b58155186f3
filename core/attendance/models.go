package attendance

import (
	"time"

	"github.com/trezcool/mahudhurio/core"
)

// DateLayout is the ISO calendar-date key for daily records.
const DateLayout = "2006-01-02"

// UnnamedCourse is the course-title fallback for entries with no course title.
const UnnamedCourse = "Unnamed Course"

// Status is a student's attendance status in one course on one day.
type Status string

const (
	StatusPresent       Status = "Present"
	StatusAbsent        Status = "Absent"
	StatusLate          Status = "Late"
	StatusExcusedAbsent Status = "Excused Absent"
	StatusExcusedLate   Status = "Excused Late"
)

// Statuses is the closed set of valid status values.
var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcusedAbsent, StatusExcusedLate}

// IsIssue reports whether the status flags the student for a guardian notification.
// Any value outside the closed status set is treated as "no issue".
func (s Status) IsIssue() bool {
	switch s {
	case StatusAbsent, StatusLate, StatusExcusedAbsent, StatusExcusedLate:
		return true
	}
	return false
}

type (
	Course struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		Grade     string    `json:"grade"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Entry is one student's attendance in one course on one day.
	Entry struct {
		StudentID   string `json:"student_id"`
		StudentName string `json:"student_name"`
		Status      Status `json:"status"`
	}

	// CourseAttendance is one course's sheet within a daily record.
	CourseAttendance struct {
		CourseID    string  `json:"course_id"`
		CourseTitle string  `json:"course_title"`
		Entries     []Entry `json:"entries"`
	}

	// DailyRecord is one calendar day's attendance across all courses,
	// keyed by ISO date. Written by the attendance-taking flow; read-only
	// to the notification pipeline.
	DailyRecord struct {
		Date    string             `json:"date"` // DateLayout
		Courses []CourseAttendance `json:"courses"`
	}

	// Issue is a single qualifying attendance event.
	Issue struct {
		Status      Status `json:"status"`
		CourseTitle string `json:"course_title"`
	}

	// StudentIssues aggregates one flagged student's same-day issues,
	// in course-iteration order. Lifetime: one pipeline run.
	StudentIssues struct {
		StudentID   string  `json:"student_id"`
		StudentName string  `json:"student_name"`
		Issues      []Issue `json:"issues"`
	}
)

// Statuses returns the issue status values in order.
func (si StudentIssues) Statuses() []Status {
	sts := make([]Status, 0, len(si.Issues))
	for _, is := range si.Issues {
		sts = append(sts, is.Status)
	}
	return sts
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title string `json:"title" validate:"required"`
	Grade string `json:"grade" validate:"required,grade"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Grade = core.CleanString(nc.Grade, true /* lower */)
	if nc.Grade == "k" {
		nc.Grade = "K"
	}
	return core.Validate.Struct(nc)
}

// SetCourseAttendance is a teacher's submission of one course's sheet for one day.
type SetCourseAttendance struct {
	Entries []SetEntry `json:"entries" validate:"required,dive"`
}

type SetEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    Status `json:"status" validate:"required,status"`
}

func (sca *SetCourseAttendance) Validate() error {
	return core.Validate.Struct(sca)
}

// FormatDate renders an ISO date for human-facing messages.
// Unparseable input is passed through untouched.
func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, Jan 2, 2006")
}

package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type courseRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Grade     string    `db:"grade"`
	CreatedAt time.Time `db:"created_at"`
}

func (r courseRow) unpack() attendance.Course {
	return attendance.Course{ID: r.ID, Title: r.Title, Grade: r.Grade, CreatedAt: r.CreatedAt.UTC()}
}

// entryRow is one joined attendance row; the student name is resolved from
// the directory at read time so renames never leave stale sheets behind.
type entryRow struct {
	Date        time.Time   `db:"date"`
	CourseID    string      `db:"course_id"`
	CourseTitle string      `db:"course_title"`
	StudentID   string      `db:"student_id"`
	StudentName null.String `db:"student_name"`
	Status      string      `db:"status"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sql.DB) *attendanceRepository {
	return &attendanceRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *attendanceRepository) CreateCourse(crs attendance.Course) (attendance.Course, error) {
	_, err := repo.db.Exec(
		`INSERT INTO courses (id, title, grade, created_at) VALUES ($1, $2, $3, $4)`,
		crs.ID, crs.Title, crs.Grade, crs.CreatedAt,
	)
	if err != nil {
		return attendance.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *attendanceRepository) QueryAllCourses() ([]attendance.Course, error) {
	var rows []courseRow
	if err := repo.db.Select(&rows, `SELECT * FROM courses ORDER BY title`); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]attendance.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.unpack())
	}
	return courses, nil
}

func (repo *attendanceRepository) GetCourseByID(id string) (attendance.Course, error) {
	var row courseRow
	if err := repo.db.Get(&row, `SELECT * FROM courses WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Course{}, attendance.ErrCourseNotFound
		}
		return attendance.Course{}, errors.Wrap(err, "getting course")
	}
	return row.unpack(), nil
}

func (repo *attendanceRepository) DeleteCoursesByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM courses WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo *attendanceRepository) GetDailyRecord(date string) (attendance.DailyRecord, error) {
	var rows []entryRow
	err := repo.db.Select(&rows,
		`SELECT e.date, e.course_id, c.title AS course_title, e.student_id, s.name AS student_name, e.status
		 FROM attendance_entries e
		 JOIN courses c ON c.id = e.course_id
		 LEFT JOIN students s ON s.id = e.student_id
		 WHERE e.date = $1
		 ORDER BY c.title, c.id, s.name`,
		date,
	)
	if err != nil {
		return attendance.DailyRecord{}, errors.Wrap(err, "querying attendance entries")
	}
	if len(rows) == 0 {
		return attendance.DailyRecord{}, attendance.ErrNotFound
	}

	rec := attendance.DailyRecord{Date: date}
	var cur *attendance.CourseAttendance
	for _, r := range rows {
		if cur == nil || cur.CourseID != r.CourseID {
			rec.Courses = append(rec.Courses, attendance.CourseAttendance{
				CourseID:    r.CourseID,
				CourseTitle: r.CourseTitle,
			})
			cur = &rec.Courses[len(rec.Courses)-1]
		}
		cur.Entries = append(cur.Entries, attendance.Entry{
			StudentID:   r.StudentID,
			StudentName: r.StudentName.String,
			Status:      attendance.Status(r.Status),
		})
	}
	return rec, nil
}

func (repo *attendanceRepository) SetCourseAttendance(date, courseID string, entries []attendance.Entry) error {
	tx, err := repo.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`DELETE FROM attendance_entries WHERE date = $1 AND course_id = $2`, date, courseID); err != nil {
		return errors.Wrap(err, "clearing course sheet")
	}
	for _, e := range entries {
		_, err = tx.Exec(
			`INSERT INTO attendance_entries (date, course_id, student_id, status) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (date, course_id, student_id) DO UPDATE SET status = EXCLUDED.status`,
			date, courseID, e.StudentID, string(e.Status),
		)
		if err != nil {
			return errors.Wrap(err, "inserting attendance entry")
		}
	}
	return errors.Wrap(tx.Commit(), "committing course sheet")
}

package inmemdb

import (
	"sort"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	courses  *courseTable
	entries  *entryTable
	students *studentTable
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{courses: db.courses, entries: db.entries, students: db.students}
}

func (repo *attendanceRepository) CreateCourse(crs attendance.Course) (attendance.Course, error) {
	repo.courses.mutex.Lock()
	defer repo.courses.mutex.Unlock()

	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *attendanceRepository) QueryAllCourses() ([]attendance.Course, error) {
	repo.courses.mutex.RLock()
	defer repo.courses.mutex.RUnlock()
	return repo.queryCourses(), nil
}

func (repo *attendanceRepository) queryCourses() []attendance.Course {
	courses := make([]attendance.Course, 0, len(repo.courses.table))
	for _, c := range repo.courses.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Title != courses[j].Title {
			return courses[i].Title < courses[j].Title
		}
		return courses[i].ID < courses[j].ID
	})
	return courses
}

func (repo *attendanceRepository) GetCourseByID(id string) (attendance.Course, error) {
	repo.courses.mutex.RLock()
	defer repo.courses.mutex.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return attendance.Course{}, attendance.ErrCourseNotFound
}

func (repo *attendanceRepository) DeleteCoursesByID(ids ...string) error {
	repo.courses.mutex.Lock()
	defer repo.courses.mutex.Unlock()

	for _, id := range ids {
		delete(repo.courses.table, id)
	}
	return nil
}

func (repo *attendanceRepository) GetDailyRecord(date string) (attendance.DailyRecord, error) {
	repo.entries.mutex.RLock()
	day, ok := repo.entries.table[date]
	if !ok || len(day) == 0 {
		repo.entries.mutex.RUnlock()
		return attendance.DailyRecord{}, attendance.ErrNotFound
	}
	// copy under lock
	byCourse := make(map[string][]attendance.Entry, len(day))
	for courseID, entries := range day {
		byCourse[courseID] = append([]attendance.Entry(nil), entries...)
	}
	repo.entries.mutex.RUnlock()

	rec := attendance.DailyRecord{Date: date}
	for _, crs := range repo.queryCoursesLocked() {
		entries, ok := byCourse[crs.ID]
		if !ok {
			continue
		}
		for i := range entries {
			entries[i].StudentName = repo.studentName(entries[i].StudentID)
		}
		rec.Courses = append(rec.Courses, attendance.CourseAttendance{
			CourseID:    crs.ID,
			CourseTitle: crs.Title,
			Entries:     entries,
		})
	}
	if len(rec.Courses) == 0 {
		return attendance.DailyRecord{}, attendance.ErrNotFound
	}
	return rec, nil
}

func (repo *attendanceRepository) queryCoursesLocked() []attendance.Course {
	repo.courses.mutex.RLock()
	defer repo.courses.mutex.RUnlock()
	return repo.queryCourses()
}

func (repo *attendanceRepository) studentName(id string) string {
	repo.students.mutex.RLock()
	defer repo.students.mutex.RUnlock()

	if std, ok := repo.students.table[id]; ok {
		return std.Name
	}
	return ""
}

func (repo *attendanceRepository) SetCourseAttendance(date, courseID string, entries []attendance.Entry) error {
	repo.entries.mutex.Lock()
	defer repo.entries.mutex.Unlock()

	day, ok := repo.entries.table[date]
	if !ok {
		day = make(map[string][]attendance.Entry)
		repo.entries.table[date] = day
	}
	day[courseID] = append([]attendance.Entry(nil), entries...)
	return nil
}

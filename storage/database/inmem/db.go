package inmemdb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/core/student"
)

// DB is a map-backed store for development and tests.
type DB struct {
	staff    *staffTable
	students *studentTable
	courses  *courseTable
	entries  *entryTable
	markers  *markerTable
}

func Open() (*DB, error) {
	return &DB{
		staff:    &staffTable{table: make(map[string]*staff.Staff)},
		students: &studentTable{table: make(map[string]*student.Student)},
		courses:  &courseTable{table: make(map[string]*attendance.Course)},
		entries:  &entryTable{table: make(map[string]map[string][]attendance.Entry)},
		markers:  &markerTable{table: make(map[string]string)},
	}, nil
}

type staffTable struct {
	mutex sync.RWMutex
	table map[string]*staff.Staff
}

type studentTable struct {
	mutex sync.RWMutex
	table map[string]*student.Student
}

type courseTable struct {
	mutex sync.RWMutex
	table map[string]*attendance.Course
}

// entryTable is keyed by date, then course ID.
type entryTable struct {
	mutex sync.RWMutex
	table map[string]map[string][]attendance.Entry
}

// markerTable is keyed by date+"/"+studentID; value is the provider SID.
type markerTable struct {
	mutex sync.RWMutex
	table map[string]string
}

package inmemdb

import (
	"sort"
	"strings"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.students}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter, orderings []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]student.Student, 0)
	search := strings.ToLower(filter.Search)
	for _, std := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(std.Name), search) &&
			!strings.Contains(strings.ToLower(std.Guardian.Name), search) {
			continue
		}
		if filter.Grade != "" && std.Grade != filter.Grade {
			continue
		}
		if filter.IsActive != nil && std.IsActive != *filter.IsActive {
			continue
		}
		matches = append(matches, std)
	}
	orderStudents(matches, orderings)
	return matches, nil
}

func orderStudents(students []student.Student, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		return // query() already sorts by name
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range orderings {
			var less, greater bool
			switch ord.Field {
			case "name":
				less, greater = students[i].Name < students[j].Name, students[i].Name > students[j].Name
			case "grade":
				less, greater = students[i].Grade < students[j].Grade, students[i].Grade > students[j].Grade
			case "created_at":
				less = students[i].CreatedAt.Before(students[j].CreatedAt)
				greater = students[i].CreatedAt.After(students[j].CreatedAt)
			default:
				continue
			}
			if !less && !greater {
				continue
			}
			if ord.Ascending {
				return less
			}
			return greater
		}
		return false
	})
}

func (repo *studentRepository) UpdateStudent(std student.Student, isActive *bool) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}

	std.IsActive = orig.IsActive
	if isActive != nil {
		std.IsActive = *isActive
	}
	std.CreatedAt = orig.CreatedAt
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

// columns allowed in a caller-supplied ordering
var studentOrderColumns = map[string]string{
	"name":       "name",
	"grade":      "grade",
	"created_at": "created_at",
}

type studentRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Grade         string      `db:"grade"`
	IsActive      bool        `db:"is_active"`
	GuardianName  string      `db:"guardian_name"`
	GuardianPhone null.String `db:"guardian_phone"`
	GuardianEmail null.String `db:"guardian_email"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r studentRow) unpack() student.Student {
	return student.Student{
		ID:       r.ID,
		Name:     r.Name,
		Grade:    r.Grade,
		IsActive: r.IsActive,
		Guardian: student.Guardian{
			Name:  r.GuardianName,
			Phone: r.GuardianPhone,
			Email: r.GuardianEmail,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sql.DB) *studentRepository {
	return &studentRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	_, err := repo.db.Exec(
		`INSERT INTO students (id, name, grade, is_active, guardian_name, guardian_phone, guardian_email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		std.ID, std.Name, std.Grade, std.IsActive,
		std.Guardian.Name, std.Guardian.Phone, std.Guardian.Email,
		std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.Select(&rows, `SELECT * FROM students ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return unpackStudents(rows), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.Get(&row, `SELECT * FROM students WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.unpack(), nil
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter, orderings []core.DBOrdering) ([]student.Student, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := fmt.Sprintf("$%d", len(args))
		where = append(where, "(name ILIKE "+n+" OR guardian_name ILIKE "+n+")")
	}
	if filter.Grade != "" {
		args = append(args, filter.Grade)
		where = append(where, fmt.Sprintf("grade = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := `SELECT * FROM students`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	orderBy := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := studentOrderColumns[ord.Field]; ok {
			orderBy = append(orderBy, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, "name ASC")
	}
	query += " ORDER BY " + strings.Join(orderBy, ", ")

	var rows []studentRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return unpackStudents(rows), nil
}

func (repo *studentRepository) UpdateStudent(std student.Student, isActive *bool) (student.Student, error) {
	active := std.IsActive
	if isActive != nil {
		active = *isActive
	} else {
		// keep stored value
		orig, err := repo.GetStudentByID(std.ID)
		if err != nil {
			return student.Student{}, err
		}
		active = orig.IsActive
	}

	res, err := repo.db.Exec(
		`UPDATE students
		 SET name = $2, grade = $3, is_active = $4, guardian_name = $5, guardian_phone = $6, guardian_email = $7, updated_at = $8
		 WHERE id = $1`,
		std.ID, std.Name, std.Grade, active,
		std.Guardian.Name, std.Guardian.Phone, std.Guardian.Email,
		std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(std.ID)
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

func unpackStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unpack())
	}
	return students
}

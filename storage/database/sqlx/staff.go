package sqlxrepos

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/staff"
)

type staffRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (r staffRow) unpack() staff.Staff {
	return staff.Staff{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *sql.DB) *staffRepository {
	return &staffRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *staffRepository) CheckUsernameUniqueness(username, email string, excluded ...staff.Staff) error {
	exclIDs := make([]string, 0, len(excluded))
	for _, stf := range excluded {
		exclIDs = append(exclIDs, stf.ID)
	}

	check := func(field, value string, dupErr error) error {
		if value == "" {
			return nil
		}
		query := fmt.Sprintf(`SELECT count(*) FROM staff WHERE %s = ?`, field)
		args := []interface{}{value}
		if len(exclIDs) > 0 {
			var err error
			if query, args, err = sqlx.In(query+` AND id NOT IN (?)`, value, exclIDs); err != nil {
				return errors.Wrap(err, "building uniqueness query")
			}
		}
		var count int
		if err := repo.db.Get(&count, repo.db.Rebind(query), args...); err != nil {
			return errors.Wrap(err, "checking uniqueness")
		}
		if count > 0 {
			return dupErr
		}
		return nil
	}

	if err := check("username", username, staff.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, staff.ErrEmailExists)
}

func (repo *staffRepository) CreateStaff(stf staff.Staff) (staff.Staff, error) {
	_, err := repo.db.Exec(
		`INSERT INTO staff (id, name, username, email, is_active, roles, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		stf.ID, stf.Name,
		null.NewString(stf.Username, stf.Username != ""),
		null.NewString(stf.Email, stf.Email != ""),
		stf.IsActive, pq.StringArray(stf.Roles), stf.PasswordHash,
		stf.CreatedAt, stf.UpdatedAt,
	)
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "inserting staff member")
	}
	return stf, nil
}

func (repo *staffRepository) QueryAllStaff() ([]staff.Staff, error) {
	var rows []staffRow
	if err := repo.db.Select(&rows, `SELECT * FROM staff ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	return unpackStaff(rows), nil
}

func (repo *staffRepository) GetStaffByID(id string) (staff.Staff, error) {
	return repo.get(`SELECT * FROM staff WHERE id = $1`, id)
}

func (repo *staffRepository) GetStaffByUsername(username string) (staff.Staff, error) {
	return repo.get(`SELECT * FROM staff WHERE username = $1`, username)
}

func (repo *staffRepository) GetStaffByEmail(email string) (staff.Staff, error) {
	return repo.get(`SELECT * FROM staff WHERE email = $1`, email)
}

func (repo *staffRepository) GetStaffByUsernameOrEmail(username string) (staff.Staff, error) {
	return repo.get(`SELECT * FROM staff WHERE username = $1 OR email = $1`, username)
}

func (repo *staffRepository) get(query string, args ...interface{}) (staff.Staff, error) {
	var row staffRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return staff.Staff{}, staff.ErrNotFound
		}
		return staff.Staff{}, errors.Wrap(err, "getting staff member")
	}
	return row.unpack(), nil
}

func (repo *staffRepository) FilterStaff(filter staff.QueryFilter) ([]staff.Staff, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := fmt.Sprintf("$%d", len(args))
		where = append(where, "(name ILIKE "+n+" OR username ILIKE "+n+" OR email ILIKE "+n+")")
	}
	if len(filter.Roles) > 0 {
		args = append(args, pq.StringArray(filter.Roles))
		where = append(where, fmt.Sprintf("roles && $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	query := `SELECT * FROM staff`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name"

	var rows []staffRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering staff")
	}
	return unpackStaff(rows), nil
}

func (repo *staffRepository) UpdateStaff(stf staff.Staff, isActive *bool) (staff.Staff, error) {
	orig, err := repo.GetStaffByID(stf.ID)
	if err != nil {
		return staff.Staff{}, err
	}

	active := orig.IsActive
	if isActive != nil {
		active = *isActive
	}
	hash := stf.PasswordHash
	if len(hash) == 0 {
		hash = orig.PasswordHash
	}
	roles := stf.Roles
	if roles == nil {
		roles = orig.Roles
	}
	lastLogin := stf.LastLogin
	if lastLogin.IsZero() {
		lastLogin = orig.LastLogin
	}

	_, err = repo.db.Exec(
		`UPDATE staff
		 SET name = $2, username = $3, email = $4, is_active = $5, roles = $6, password_hash = $7, updated_at = $8, last_login = $9
		 WHERE id = $1`,
		stf.ID, stf.Name,
		null.NewString(stf.Username, stf.Username != ""),
		null.NewString(stf.Email, stf.Email != ""),
		active, pq.StringArray(roles), hash,
		stf.UpdatedAt, null.NewTime(lastLogin, !lastLogin.IsZero()),
	)
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "updating staff member")
	}
	return repo.GetStaffByID(stf.ID)
}

func (repo *staffRepository) DeleteStaffByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM staff WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return nil
}

func unpackStaff(rows []staffRow) []staff.Staff {
	members := make([]staff.Staff, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.unpack())
	}
	return members
}

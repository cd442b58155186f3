package inmemdb

import (
	"sort"
	"strings"

	"github.com/trezcool/mahudhurio/core/staff"
)

type staffRepository struct {
	db *staffTable
}

var _ staff.Repository = (*staffRepository)(nil)

func NewStaffRepository(db *DB) *staffRepository {
	return &staffRepository{db: db.staff}
}

func (repo *staffRepository) query() []staff.Staff {
	members := make([]staff.Staff, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		members = append(members, *s)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

func (repo *staffRepository) CheckUsernameUniqueness(username, email string, excluded ...staff.Staff) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	isExcluded := func(stf staff.Staff) bool {
		for _, ex := range excluded {
			if ex.ID == stf.ID {
				return true
			}
		}
		return false
	}

	for _, stf := range repo.query() {
		if isExcluded(stf) {
			continue
		}
		if username != "" && stf.Username == username {
			return staff.ErrUsernameExists
		}
		if email != "" && stf.Email == email {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateStaff(stf staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[stf.ID] = &stf
	return stf, nil
}

func (repo *staffRepository) QueryAllStaff() ([]staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *staffRepository) GetStaffByID(id string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if stf, ok := repo.db.table[id]; ok {
		return *stf, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByUsername(username string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stf := range repo.query() {
		if stf.Username == username {
			return stf, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByEmail(email string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stf := range repo.query() {
		if stf.Email == email {
			return stf, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByUsernameOrEmail(username string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stf := range repo.query() {
		if stf.Username == username || stf.Email == username {
			return stf, nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) FilterStaff(filter staff.QueryFilter) ([]staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	hasAnyRole := func(stf staff.Staff) bool {
		if len(filter.Roles) == 0 {
			return true
		}
		for _, role := range filter.Roles {
			for _, r := range stf.Roles {
				if r == role {
					return true
				}
			}
		}
		return false
	}

	matches := make([]staff.Staff, 0)
	search := strings.ToLower(filter.Search)
	for _, stf := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(stf.Name), search) &&
			!strings.Contains(strings.ToLower(stf.Username), search) &&
			!strings.Contains(strings.ToLower(stf.Email), search) {
			continue
		}
		if !hasAnyRole(stf) {
			continue
		}
		if filter.IsActive != nil && stf.IsActive != *filter.IsActive {
			continue
		}
		matches = append(matches, stf)
	}
	return matches, nil
}

func (repo *staffRepository) UpdateStaff(stf staff.Staff, isActive *bool) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[stf.ID]
	if !ok {
		return staff.Staff{}, staff.ErrNotFound
	}

	stf.IsActive = orig.IsActive
	if isActive != nil {
		stf.IsActive = *isActive
	}
	if len(stf.PasswordHash) == 0 {
		stf.PasswordHash = orig.PasswordHash
	}
	if stf.Roles == nil {
		stf.Roles = orig.Roles
	}
	if stf.LastLogin.IsZero() {
		stf.LastLogin = orig.LastLogin
	}
	stf.CreatedAt = orig.CreatedAt
	repo.db.table[stf.ID] = &stf
	return stf, nil
}

func (repo *staffRepository) DeleteStaffByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

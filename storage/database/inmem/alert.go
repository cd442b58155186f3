package inmemdb

import (
	"github.com/trezcool/mahudhurio/core/alert"
)

type alertRepository struct {
	db *markerTable
}

var _ alert.Repository = (*alertRepository)(nil)

func NewAlertRepository(db *DB) *alertRepository {
	return &alertRepository{db: db.markers}
}

func markerKey(date, studentID string) string {
	return date + "/" + studentID
}

func (repo *alertRepository) WasNotified(date, studentID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.table[markerKey(date, studentID)]
	return ok, nil
}

func (repo *alertRepository) MarkNotified(date, studentID, providerSID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[markerKey(date, studentID)] = providerSID
	return nil
}

package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/alert"
)

// alertRepository persists per-(date, student) sent markers so a re-run for
// a day never double-notifies a guardian.
type alertRepository struct {
	db *sqlx.DB
}

var _ alert.Repository = (*alertRepository)(nil)

func NewAlertRepository(db *sql.DB) *alertRepository {
	return &alertRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *alertRepository) WasNotified(date, studentID string) (bool, error) {
	var count int
	err := repo.db.Get(&count,
		`SELECT count(*) FROM notification_log WHERE date = $1 AND student_id = $2`,
		date, studentID,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking sent marker")
	}
	return count > 0, nil
}

func (repo *alertRepository) MarkNotified(date, studentID, providerSID string) error {
	_, err := repo.db.Exec(
		`INSERT INTO notification_log (date, student_id, provider_sid) VALUES ($1, $2, $3)
		 ON CONFLICT (date, student_id) DO NOTHING`,
		date, studentID, providerSID,
	)
	return errors.Wrap(err, "recording sent marker")
}

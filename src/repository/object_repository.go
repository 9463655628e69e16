package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

// ObjectRepository is a JSON key-value storage scoped to one dashboard.
type ObjectRepository struct {
	DB               *sql.DB
	CurrentDashboard *model.Dashboard
}

func (o *ObjectRepository) LoadObject(key string, object interface{}) error {
	var jsonString string
	err := o.DB.QueryRow(`
		SELECT
			os.object as ObjectJSON
		FROM object_storage os WHERE os.storage_key = ? AND os.dashboard_id = ?
	`, key, o.CurrentDashboard.Id).Scan(
		&jsonString,
	)

	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(jsonString), object)
}

func (o *ObjectRepository) SaveObject(key string, object interface{}) error {
	jsonString, err := json.Marshal(object)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = o.DB.Exec(`
		INSERT INTO object_storage SET
			storage_key = ?,
			object = ?,
			created_at = ?,
			updated_at = ?,
			dashboard_id = ?
		ON DUPLICATE KEY UPDATE
			object = ?,
			updated_at = ?
	`,
		key,
		string(jsonString),
		now,
		now,
		o.CurrentDashboard.Id,
		string(jsonString),
		now,
	)

	if err != nil {
		log.Errorf("[object_storage] %s: %s", key, err.Error())

		return err
	}

	return nil
}

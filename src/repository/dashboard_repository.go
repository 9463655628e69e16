package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type DashboardRepository struct {
	DB            *sql.DB
	RDB           *redis.Client
	Ctx           *context.Context
	DashboardUuid string
}

func (d *DashboardRepository) GetCurrentDashboardCached() *model.Dashboard {
	cacheKey := d.GetCacheKey(d.DashboardUuid)
	cached := d.RDB.Get(*d.Ctx, cacheKey).Val()

	if len(cached) > 0 {
		var dashboard model.Dashboard
		err := json.Unmarshal([]byte(cached), &dashboard)
		if err == nil {
			return &dashboard
		}
	}

	dashboard := d.GetCurrentDashboard()
	if dashboard == nil {
		return nil
	}

	encoded, err := json.Marshal(dashboard)
	if err == nil {
		d.RDB.Set(*d.Ctx, cacheKey, string(encoded), time.Minute)
	}

	return dashboard
}

func (d *DashboardRepository) GetCurrentDashboard() *model.Dashboard {
	var dashboard model.Dashboard

	err := d.DB.QueryRow(`
		SELECT
			d.id as Id,
			d.uuid as Uuid
		FROM dashboards d
		WHERE d.uuid = ?`, d.DashboardUuid,
	).Scan(
		&dashboard.Id,
		&dashboard.Uuid,
	)

	if err != nil {
		if err != sql.ErrNoRows {
			log.Errorf("[dashboard] %s", err.Error())
		}
		return nil
	}

	return &dashboard
}

func (d *DashboardRepository) Create(dashboard model.Dashboard) error {
	_, err := d.DB.Exec(`INSERT INTO dashboards SET uuid = ?`, dashboard.Uuid)

	if err != nil {
		log.Errorf("[dashboard] %s", err.Error())
		return err
	}

	return nil
}

func (d *DashboardRepository) GetCacheKey(dashboardUuid string) string {
	return fmt.Sprintf("dashboard-%s", dashboardUuid)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthReport is the body of GET /health.
type HealthReport struct {
	OK       bool          `json:"ok"`
	Database DatabaseState `json:"database"`
	Redis    string        `json:"redis"`
	Receipts ReceiptQueue  `json:"receipts"`
}

// DatabaseState carries the applied migration version; Dirty means a migration failed halfway.
type DatabaseState struct {
	Status        string `json:"status"`
	SchemaVersion uint   `json:"schema_version"`
	Dirty         bool   `json:"dirty"`
}

// ReceiptQueue is the receipt job backlog. Values are -1 when Redis is unreachable.
type ReceiptQueue struct {
	Pending    int64 `json:"pending"`
	DeadLetter int64 `json:"dead_letter"`
}

// healthSources is what the report is assembled from.
type healthSources struct {
	pingDB        func(ctx context.Context) error
	schemaVersion func(ctx context.Context) (uint, bool, error)
	pingRedis     func(ctx context.Context) error
	backlog       func(ctx context.Context) (pending, dead int64, err error)
}

// Health reports Postgres, the migration state, Redis and the receipt queue.
// Never exposes credentials or connection strings.
//
// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200 {object} HealthReport
// @Failure  503 {object} HealthReport
// @Router   /health [get]
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return healthHandler(healthSources{
		pingDB: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		schemaVersion: func(ctx context.Context) (uint, bool, error) {
			var row struct {
				Version int64
				Dirty   bool
			}
			err := db.WithContext(ctx).Raw("SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&row).Error
			return uint(row.Version), row.Dirty, err
		},
		pingRedis: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
		backlog: func(ctx context.Context) (int64, int64, error) {
			pending, err := rdb.LLen(ctx, worker.QueueReceipt).Result()
			if err != nil {
				return 0, 0, err
			}
			dead, err := worker.DLQLength(ctx, rdb, worker.QueueReceipt)
			return pending, dead, err
		},
	})
}

func healthHandler(src healthSources) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		report := HealthReport{
			Database: DatabaseState{Status: "up"},
			Redis:    "up",
			Receipts: ReceiptQueue{Pending: -1, DeadLetter: -1},
		}

		if src.pingDB(ctx) != nil {
			report.Database.Status = "down"
		} else if version, dirty, err := src.schemaVersion(ctx); err != nil {
			report.Database.Status = "unmigrated"
		} else {
			report.Database.SchemaVersion, report.Database.Dirty = version, dirty
			if dirty {
				report.Database.Status = "dirty"
			}
		}

		if src.pingRedis(ctx) != nil {
			report.Redis = "down"
		} else if pending, dead, err := src.backlog(ctx); err == nil {
			report.Receipts = ReceiptQueue{Pending: pending, DeadLetter: dead}
		}

		// Dead-lettered receipts do not fail the check.
		report.OK = report.Database.Status == "up" && report.Redis == "up"
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}

package postgres

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/adapters/out/postgres/batchrepo"
	"fulfillment/internal/adapters/out/postgres/incidentrepo"
	"fulfillment/internal/adapters/out/postgres/ledgerrepo"
	"fulfillment/internal/adapters/out/postgres/resultrepo"
	"fulfillment/internal/adapters/out/postgres/settingsrepo"
	"fulfillment/internal/adapters/out/postgres/shipmentrepo"
	"fulfillment/internal/pkg/retry"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver selects the Job Store backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Postgres error codes that a retried transaction can succeed past.
var transientCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// Open connects to the Job Store and registers error classification so that
// every statement error that is safe to retry is marked with retry.Transient.
//
// For sqlite, dsn is a file path; writers are serialized with immediate
// transactions and a busy timeout.
func Open(driver Driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = gorm_postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err = RegisterErrorClassification(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every Job Store table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&batchrepo.BatchDTO{},
		&shipmentrepo.ShipmentRowDTO{},
		&resultrepo.ResultRecordDTO{},
		&ledgerrepo.BalanceDTO{},
		&ledgerrepo.OwnerPriceDTO{},
		&settingsrepo.SystemSettingDTO{},
		&settingsrepo.WorkerHeartbeatDTO{},
		&incidentrepo.IncidentDTO{},
	)
}

// RegisterErrorClassification adds an after-callback to every statement kind
// that rewrites db.Error through classify.
func RegisterErrorClassification(db *gorm.DB) error {
	const name = "fulfillment:classify_errors"
	mark := func(tx *gorm.DB) {
		if tx.Error != nil {
			tx.Error = classify(tx.Error)
		}
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().After("gorm:create").Register(name, mark),
		cb.Query().After("gorm:query").Register(name, mark),
		cb.Update().After("gorm:update").Register(name, mark),
		cb.Delete().After("gorm:delete").Register(name, mark),
		cb.Row().After("gorm:row").Register(name, mark),
		cb.Raw().After("gorm:raw").Register(name, mark),
	)
}

// classify marks lock conflicts and busy-database errors as transient.
func classify(err error) error {
	if err == nil || retry.IsTransient(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := transientCodes[pgErr.Code]; ok {
			return retry.Transient(err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
			return retry.Transient(err)
		}
	}
	return err
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
}

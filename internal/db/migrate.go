package db

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/StediMove/Invoice-2.0-sub000/internal/models"
)

// Models migrated at boot, in dependency order.
func allModels() []interface{} {
	return []interface{}{
		&models.User{}, &models.CompanyProfile{}, &models.Customer{},
		&models.InvoiceTemplate{}, &models.PaymentMethod{},
		&models.Invoice{}, &models.LineItem{},
	}
}

// ConnectAndMigrate opens the configured database and brings the schema
// up to date. With a postgres DSN it retries the connection (container
// startup races) and honors MIGRATIONS=1 for SQL migrations; without a
// DSN it falls back to a local sqlite file for development.
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if dsn == "" || strings.HasSuffix(dsn, ".db") || strings.HasPrefix(dsn, "file:") {
		path := dsn
		if path == "" {
			path = "invoices.db"
		}
		db, err = gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	} else {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			fmt.Println("Retrying DB connection...", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	// If MIGRATIONS=1 we run sql migrations via golang-migrate; otherwise AutoMigrate (dev convenience)
	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range allModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "invoices", "line_items"} {
		if !db.Migrator().HasTable(table) {
			return nil, fmt.Errorf("missing table after migration: %s", table)
		}
	}
	return db, nil
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// MaskDSN hides the password portion of a key=value DSN for logs.
func MaskDSN(dsn string) string {
	if strings.Contains(dsn, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		return re.ReplaceAllString(dsn, `${1}***`)
	}
	return dsn
}

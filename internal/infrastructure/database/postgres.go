package database

import (
	"fmt"

	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *logrus.Entry) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.WithFields(logrus.Fields{"host": cfg.Host, "database": cfg.Name}).Info("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logrus.Entry) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Catalogue
		&entity.Product{},
		&entity.Customer{},
		&entity.Table{},

		// Sales and kitchen
		&entity.Order{},
		&entity.KitchenOrder{},

		// Ledgers
		&entity.StockReceipt{},
		&entity.StockReceiptItem{},
		&entity.CustomerTreatmentPackage{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

package database

import (
	"fmt"
	"time"

	"github.com/kp666/twitter-stream/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config     models.DatabaseConfig
	driverName string
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping() error {
	if db.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) DriverName() string {
	return db.driverName
}

// BatchSize returns the configured insert batch size
func (db *DB) BatchSize() int {
	return db.config.BatchSize
}

// Migrate creates the stream_records table
func (db *DB) Migrate() error {
	if db.driverName == "clickhouse" {
		return RunClickHouseMigrations(db.DB)
	}
	if err := db.AutoMigrate(&models.StreamRecord{}); err != nil {
		return fmt.Errorf("failed to migrate stream records: %w", err)
	}
	return nil
}

func (db *DB) setConnectionPool() {
	if db.DB == nil {
		return
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}

	if db.config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	}
	if db.config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)
	}
	if db.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(db.config.ConnMaxLifetime) * time.Second)
	}
}

// New opens, pools and pings the configured database
func New(config models.DatabaseConfig) (*DB, error) {
	dialect, driverName, err := dialector(config)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialect, &gorm.Config{
		// Failures surface through returned errors
		Logger: logger.Default.LogMode(logger.Silent),
		// Prepared statements are incomplete in the ClickHouse driver
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}

	db := &DB{
		DB:         gormDB,
		config:     config,
		driverName: driverName,
	}

	db.setConnectionPool()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", driverName, err)
	}

	fiberlog.Infof("Connected to %s database", driverName)
	return db, nil
}

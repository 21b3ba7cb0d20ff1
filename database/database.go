package database

import (
	"fmt"
	"time"

	"economic/config"
	"economic/logging"
	"economic/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN builds the MySQL connection string.
func DSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
	)
}

// Init opens the connection and migrates the schema.
func Init(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	var err error
	DB, err = gorm.Open(mysql.Open(DSN(&cfg.Database)), &gorm.Config{
		Logger: logger.New(logging.Get(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		// deleting a referenced category must not be blocked by the schema
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Transaction{},
		&models.AIChatMessage{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	logging.Get().Info("database ready")
	return nil
}

// SeedUserCategories creates the default categories for a new account.
func SeedUserCategories(tx *gorm.DB, userID string) error {
	cats := models.DefaultCategories()
	for i := range cats {
		cats[i].UserID = userID
	}
	return tx.Create(&cats).Error
}

// GetDB returns the shared connection.
func GetDB() *gorm.DB {
	return DB
}

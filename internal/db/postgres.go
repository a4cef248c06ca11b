package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	config "github.com/Galaktikon/trust-cart/configs"
	"github.com/Galaktikon/trust-cart/internal/models"
)

// Open connects to PostgreSQL and migrates the schema.
func Open(cfg config.PostgresConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.TimeZone,
	)

	conn, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Config is shared by every dialect. TranslateError turns unique violations
// into gorm.ErrDuplicatedKey, which the find-or-create paths rely on.
func Config() *gorm.Config {
	return newConfig(log.New(os.Stdout, "\r\n", log.LstdFlags))
}

// newConfig logs warnings and errors to w. A lookup that finds nothing is
// the normal first step of find-or-create, so it is not an error here.
func newConfig(w logger.Writer) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(w, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Store{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.BankLink{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

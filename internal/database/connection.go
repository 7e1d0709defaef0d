// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hargapangan/pangan-backend/internal/config"
	"github.com/hargapangan/pangan-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Info),
			TranslateError: true,
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Region{},
		&models.Commodity{},
		&models.CustomCommodity{},
		&models.PricePoint{},
		&models.PriceHistory{},
		&models.PriceOverride{},
		&models.MarketPriceReport{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// One ledger row per commodity/date/region/source/level. region_id is
		// nullable, and NULLs never collide in a plain unique index, so the
		// national scope is folded to the zero uuid.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_price_points_identity ON price_points(
			commodity_id, date, COALESCE(region_id, '00000000-0000-0000-0000-000000000000'::uuid), source, level
		) WHERE deleted_at IS NULL`,

		// Price lookup indexes
		"CREATE INDEX IF NOT EXISTS idx_price_points_date_level ON price_points(date, level)",
		"CREATE INDEX IF NOT EXISTS idx_price_points_commodity_date ON price_points(commodity_id, date)",
		"CREATE INDEX IF NOT EXISTS idx_price_histories_commodity ON price_histories(commodity_id, created_at DESC)",

		// Override indexes
		"CREATE INDEX IF NOT EXISTS idx_price_overrides_status ON price_overrides(status)",
		"CREATE INDEX IF NOT EXISTS idx_price_overrides_point ON price_overrides(price_point_id)",
		"CREATE INDEX IF NOT EXISTS idx_price_overrides_requester ON price_overrides(requester_id)",

		// Market report indexes
		"CREATE INDEX IF NOT EXISTS idx_market_reports_reporter ON market_price_reports(reporter_id)",
		"CREATE INDEX IF NOT EXISTS idx_market_reports_status_date ON market_price_reports(status, report_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_market_reports_market ON market_price_reports(market_name)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB, cfg *config.Config) error {
	log.Println("Seeding initial data...")

	// Create default admin user
	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username: "admin",
			Email:    "admin@hargapangan.local",
			Role:     models.UserRoleAdmin,
			Status:   models.UserStatusActive,
			FullName: "System Administrator",
		}

		if err := admin.SetPassword("Admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("Default admin user created successfully")
	}

	// Register the configured sync region
	var regionCount int64
	db.Model(&models.Region{}).
		Where("province_id = ? AND city_id = ?", cfg.PanelHarga.ProvinceID, cfg.PanelHarga.CityID).
		Count(&regionCount)

	if regionCount == 0 {
		region := &models.Region{
			ProvinceID: cfg.PanelHarga.ProvinceID,
			CityID:     cfg.PanelHarga.CityID,
			Name:       fmt.Sprintf("Province %d / City %d", cfg.PanelHarga.ProvinceID, cfg.PanelHarga.CityID),
		}
		if err := db.Create(region).Error; err != nil {
			return fmt.Errorf("failed to create default region: %w", err)
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

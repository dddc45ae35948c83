package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edumatch/tutor-scheduler/internal/config"
	"github.com/edumatch/tutor-scheduler/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.TeacherProfile{},
		&models.Subject{},
		&models.Language{},
		&models.Course{},
		&models.AvailabilitySlot{},
		&models.Booking{},
		&models.Session{},
		&models.Payment{},
		&models.PaymentMethod{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Slot identity is unique per (teacher, scope, day, start). The
	// scope and day columns are nullable, and Postgres treats NULLs as
	// distinct, so a plain composite index would not hold; the COALESCE
	// sentinels make the constraint effective for every variant.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_identity
		ON availability_slots (
			teacher_id,
			COALESCE(course_id, 0),
			COALESCE(order_id, 0),
			COALESCE(weekday, 0),
			COALESCE(date, '0001-01-01'),
			start_time
		)`).Error; err != nil {
		log.Fatalf("failed to create slot identity index: %v", err)
	}

	return db
}

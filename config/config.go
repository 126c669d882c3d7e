package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/classpilot/lms-backend/models"
)

var DB *gorm.DB

func InitDB() {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost, dbUser, dbPass, dbName, dbPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatal("cannot connect to database:", err)
	}

	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("cannot get sql.DB from gorm:", err)
	}

	// Connection pooling
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(DB); err != nil {
		log.Fatal("migration failed: ", err)
	}
	log.Println("postgreSQL connected & migrated successfully!")
}

// Migrate runs AutoMigrate for every model and then the ordered migration
// list. Failures are fatal to the caller, never swallowed.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.Lesson{},
		&models.Assessment{},
		&models.Question{},
		&models.Rubric{},
		&models.Submission{},
		&models.Grade{},
		&models.ChatLog{},
		&models.Event{},
		&models.Material{},
	)
	if err != nil {
		return err
	}
	return runMigrations(db)
}

// Ordered, idempotent statements for changes AutoMigrate cannot express.
// Each entry must be safe to re-run on every startup.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_grades_assessment_student ON grades (assessment_id, student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_assessment_student ON submissions (assessment_id, student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_logs_student_ts ON chat_logs (student_id, timestamp)`,
}

func runMigrations(db *gorm.DB) error {
	// sqlite (tests) has no jsonb or these exact index needs; the guarded
	// statements below are postgres-only.
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for i, stmt := range migrations {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// ConnectDatabase returns a DB handle without the package global (used by
// the seed tool).
func ConnectDatabase() (*gorm.DB, error) {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		dbHost, dbUser, dbPass, dbName, dbPort,
	)

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
}

package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/classpilot/lms-backend/config"
	"github.com/classpilot/lms-backend/models"
)

// Seeds the first admin account. Safe to re-run: if the email already
// exists nothing is written.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found")
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("cannot connect to database: ", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal("migration failed: ", err)
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("admin %s already exists, nothing to do", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("cannot hash password: ", err)
	}

	admin := models.User{
		FullName: "Administrator",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("cannot create admin: ", err)
	}
	log.Printf("admin %s created", email)
}

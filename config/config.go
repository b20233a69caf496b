package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kalilynx/embededticketautomation/internal/models"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
	}, nil
}

// EventConfig describes the recurring event tickets are sold for. The
// defaults match the venue's standing Saturday night.
type EventConfig struct {
	Name        string
	Venue       string
	TicketPrice int
	Currency    string
	BaseURL     string
}

func LoadEventConfig() *EventConfig {
	price := 4500
	if v := os.Getenv("TICKET_PRICE"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid TICKET_PRICE %q, using default %d", v, price)
		} else {
			price = parsed
		}
	}

	return &EventConfig{
		Name:        envOrDefault("EVENT_NAME", "Saturday Night Greek Live Music"),
		Venue:       envOrDefault("VENUE_NAME", "Ramsgate Live"),
		TicketPrice: price,
		Currency:    envOrDefault("CURRENCY", "aud"),
		BaseURL:     envOrDefault("BASE_URL", "http://localhost:8080"),
	}
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

func LoadStripeConfig() (*StripeConfig, error) {
	cfg := &StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY not configured")
	}
	return cfg, nil
}

type MailerConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
}

func LoadMailerConfig() *MailerConfig {
	return &MailerConfig{
		APIKey:    os.Getenv("MAILERSEND_API_KEY"),
		FromName:  envOrDefault("EMAIL_FROM_NAME", envOrDefault("VENUE_NAME", "Ramsgate Live")),
		FromEmail: os.Getenv("EMAIL_FROM"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&models.Role{}, &models.User{}, &models.Order{}, &models.Ticket{})
	if err != nil {
		return nil, err
	}

	seedRoles(db)
	seedAdmin(db)

	return db, nil
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{
		{Name: "admin"},
		{Name: "staff"},
	}

	for _, role := range roles {
		var existingRole models.Role
		result := db.Where("name = ?", role.Name).First(&existingRole)
		if result.Error != nil {
			db.Create(&role)
		}
	}
}

// seedAdmin creates the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD so staff accounts can be registered through the API.
func seedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return
	}

	var adminRole models.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		log.Printf("admin role missing, skipping admin seed: %v", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash admin password: %v", err)
		return
	}

	if err := db.Create(&models.User{
		Email:    email,
		Password: string(hashed),
		RoleID:   adminRole.ID,
	}).Error; err != nil {
		log.Printf("failed to seed admin account: %v", err)
	}
}

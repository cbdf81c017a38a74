package database

import (
	"log"
	"os"

	"magari/config"
	"magari/internal/domain"
	"magari/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the initial admin account if none exists.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@magari.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
		log.Printf("[Seed] ADMIN_PASSWORD not set, using default (change it)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] bcrypt: %v", err)
		return
	}
	admin := &models.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[Seed] admin create: %v", err)
		return
	}
	log.Printf("[Seed] admin account created: %s", email)
}

// SeedRevenueSettings inserts the default active revenue split when no
// settings row exists yet, so distribution never starts against an empty
// table on a fresh install.
func SeedRevenueSettings(db *gorm.DB, cfg *config.RevenueConfig) {
	var count int64
	db.Model(&models.RevenueSetting{}).Count(&count)
	if count > 0 {
		return
	}
	s := &models.RevenueSetting{
		DealerPercentage:   cfg.DefaultDealerPercentage,
		PlatformPercentage: cfg.DefaultPlatformPercentage,
		IsActive:           true,
	}
	if err := db.Create(s).Error; err != nil {
		log.Printf("[Seed] revenue settings: %v", err)
		return
	}
	log.Printf("[Seed] default revenue split seeded: dealer %d%% / platform %d%%",
		s.DealerPercentage, s.PlatformPercentage)
}

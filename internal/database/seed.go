package database

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
)

// AdminSeed describes the administrator account created on an empty database.
type AdminSeed struct {
	Name     string
	Phone    string
	Password string
	Zone     string
}

// SeedOptions controls what Seed inserts. A nil Admin skips the admin account.
type SeedOptions struct {
	DefaultTurfs bool
	Admin        *AdminSeed
	BcryptCost   int
}

// DefaultTurfs are the venues inserted when the turfs table is empty.
var DefaultTurfs = []models.Turf{
	{Name: "Kick Off Turf", Location: "Patia, near KIIT Square", PricePerHour: 1200, Formats: "5v5, 7v7", Emoji: "⚡", Description: "5v5 and 7v7 available. Floodlights included."},
	{Name: "The Arena", Location: "Jaydev Vihar", PricePerHour: 1000, Formats: "5v5", Emoji: "🥅", Description: "Best for 5v5. Parking available."},
	{Name: "Soccer City", Location: "Khandagiri / Jagamara", PricePerHour: 800, Formats: "6v6", Emoji: "⚽", Description: "Budget friendly. 6v6 size."},
}

// SeedResult reports what Seed inserted so the caller can log it.
type SeedResult struct {
	Turfs int
	Admin bool
}

// Seed inserts the default turfs when no turf exists and the admin account when no admin
// exists. Both checks make it safe to call on every startup.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	db = db.WithContext(ctx)

	if opts.DefaultTurfs {
		var count int64
		if err := db.Model(&models.Turf{}).Count(&count).Error; err != nil {
			return res, fmt.Errorf("count turfs: %w", err)
		}
		if count == 0 {
			turfs := make([]models.Turf, len(DefaultTurfs))
			copy(turfs, DefaultTurfs)
			if err := db.Create(&turfs).Error; err != nil {
				return res, fmt.Errorf("seed turfs: %w", err)
			}
			res.Turfs = len(turfs)
		}
	}

	if opts.Admin != nil {
		var count int64
		if err := db.Model(&models.Player{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
			return res, fmt.Errorf("count admins: %w", err)
		}
		if count == 0 {
			cost := opts.BcryptCost
			if cost == 0 {
				cost = bcrypt.DefaultCost
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(opts.Admin.Password), cost)
			if err != nil {
				return res, fmt.Errorf("hash admin password: %w", err)
			}
			admin := models.Player{
				Name:         opts.Admin.Name,
				Phone:        opts.Admin.Phone,
				PasswordHash: string(hash),
				Zone:         opts.Admin.Zone,
				SkillLevel:   10,
				Position:     "Any",
				IsAdmin:      true,
			}
			if err := db.Create(&admin).Error; err != nil {
				return res, fmt.Errorf("seed admin: %w", err)
			}
			res.Admin = true
		}
	}

	return res, nil
}

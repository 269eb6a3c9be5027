// This file handles player accounts: registration, login and logout, and profiles.
//
// Passwords are stored only as bcrypt hashes. Logging in issues an opaque session token
// through the session store; a player may hold several tokens at once (one per device),
// and logging out revokes only the token it was called with.

package services

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/session"
)

// phonePattern accepts exactly ten digits, no separators or country code.
var phonePattern = regexp.MustCompile(`^\d{10}$`)

const (
	minPasswordLength = 4
	minSkillLevel     = 1
	maxSkillLevel     = 10
	defaultPosition   = "Any"
)

// PlayerService handles registration, login and player profiles.
type PlayerService struct {
	db         *gorm.DB
	sessions   session.Store
	bcryptCost int
}

// NewPlayerService returns a PlayerService. bcryptCost of 0 uses bcrypt.DefaultCost.
func NewPlayerService(db *gorm.DB, sessions session.Store, bcryptCost int) *PlayerService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PlayerService{db: db, sessions: sessions, bcryptCost: bcryptCost}
}

// RegisterInput is the JSON body of POST /api/auth/register.
type RegisterInput struct {
	Name       string `json:"name"`        // Required
	Phone      string `json:"phone"`       // Required: exactly 10 digits
	Password   string `json:"password"`    // Required: at least 4 characters
	Zone       string `json:"zone"`        // Required
	SkillLevel *int   `json:"skill_level"` // Required: 1..10
	Position   string `json:"position"`    // Optional, defaults to "Any"
	Bio        string `json:"bio"`         // Optional
}

// LoginInput is the JSON body of POST /api/auth/login.
type LoginInput struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token  string        `json:"token"`
	Player models.Player `json:"player"`
}

// Register creates a player and logs them in.
func (s *PlayerService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	// Trim first so "  " counts as missing
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	zone := strings.TrimSpace(in.Zone)

	// Validate required fields, then their formats
	if name == "" || phone == "" || in.Password == "" || zone == "" || in.SkillLevel == nil {
		return nil, validation("Missing required fields: name, phone, password, zone, skill_level")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validation("Password must be at least 4 characters")
	}
	if !phonePattern.MatchString(phone) {
		return nil, validation("Phone must be 10 digits")
	}
	if err := checkSkill(*in.SkillLevel); err != nil {
		return nil, err
	}

	// bcrypt salts the hash itself, so the same password never hashes the same way twice
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, internal("hash password", err)
	}

	position := strings.TrimSpace(in.Position)
	if position == "" {
		position = defaultPosition
	}
	player := models.Player{
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		Zone:         zone,
		SkillLevel:   *in.SkillLevel,
		Position:     position,
		Bio:          in.Bio,
	}
	// The unique index on phone decides duplicates, so two concurrent sign-ups with the
	// same number can't both succeed.
	if err := s.db.WithContext(ctx).Create(&player).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Phone number already registered. Try logging in.")
		}
		return nil, internal("create player", err)
	}

	// Registration logs the player straight in
	token, err := s.sessions.Issue(ctx, player.ID)
	if err != nil {
		return nil, internal("issue session", err)
	}
	return &AuthResult{Token: token, Player: player}, nil
}

// Login checks a phone/password pair and issues a new session token.
// Existing tokens for the player stay valid.
func (s *PlayerService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" || in.Password == "" {
		return nil, validation("Phone and password are required")
	}

	var player models.Player
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&player).Error; err != nil {
		if isNotFound(err) {
			return nil, unauthorized("No account found with this phone number")
		}
		return nil, internal("load player", err)
	}
	// CompareHashAndPassword re-hashes with the salt and cost stored in the hash
	if bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(in.Password)) != nil {
		return nil, unauthorized("Incorrect password")
	}

	token, err := s.sessions.Issue(ctx, player.ID)
	if err != nil {
		return nil, internal("issue session", err)
	}
	return &AuthResult{Token: token, Player: player}, nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *PlayerService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return internal("revoke session", err)
	}
	return nil
}

// Get returns one player by id.
func (s *PlayerService) Get(ctx context.Context, id int64) (*models.Player, error) {
	var player models.Player
	if err := s.db.WithContext(ctx).First(&player, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("Player not found")
		}
		return nil, internal("load player", err)
	}
	return &player, nil
}

// PlayerFilter narrows List. Zero values mean "no filter".
type PlayerFilter struct {
	Zone  string
	Skill int
}

// List returns non-admin players, newest first.
func (s *PlayerService) List(ctx context.Context, f PlayerFilter) ([]models.Player, error) {
	// Admins are staff accounts and never show up in public listings.
	// Filters are chained onto the query only when set.
	q := s.db.WithContext(ctx).Where("is_admin = ?", false)
	if f.Zone != "" {
		q = q.Where("zone = ?", f.Zone)
	}
	if f.Skill != 0 {
		q = q.Where("skill_level = ?", f.Skill)
	}

	players := []models.Player{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&players).Error; err != nil {
		return nil, internal("list players", err)
	}
	return players, nil
}

// ListAll returns every player, admins included. Admin only (enforced by the route).
func (s *PlayerService) ListAll(ctx context.Context) ([]models.Player, error) {
	players := []models.Player{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&players).Error; err != nil {
		return nil, internal("list all players", err)
	}
	return players, nil
}

// UpdatePlayerInput is the JSON body of PUT /api/players/:id.
// Nil fields are left unchanged; empty name/zone/position are ignored too.
type UpdatePlayerInput struct {
	Name       *string `json:"name"`
	Zone       *string `json:"zone"`
	SkillLevel *int    `json:"skill_level"`
	Position   *string `json:"position"`
	Bio        *string `json:"bio"`
	AvatarURL  *string `json:"avatar_url"`
}

// Update changes a player's profile. Only the player themself or an admin may do it.
func (s *PlayerService) Update(ctx context.Context, caller Caller, targetID int64, in UpdatePlayerInput) (*models.Player, error) {
	// Permission before existence: a stranger learns nothing about other ids
	if !caller.CanActFor(targetID) {
		return nil, forbidden("Not authorized")
	}
	if _, err := s.Get(ctx, targetID); err != nil {
		return nil, err
	}

	// Build a column -> value map of the fields that were sent. Blank name, zone and
	// position are skipped because those columns must never be empty; bio and
	// avatar_url may be cleared.
	updates := map[string]any{}
	setNonEmpty := func(column string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	setNonEmpty("name", in.Name)
	setNonEmpty("zone", in.Zone)
	setNonEmpty("position", in.Position)
	if in.SkillLevel != nil {
		if err := checkSkill(*in.SkillLevel); err != nil {
			return nil, err
		}
		updates["skill_level"] = *in.SkillLevel
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*in.AvatarURL)
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", targetID).Updates(updates).Error
		if err != nil {
			return nil, internal("update player", err)
		}
	}
	return s.Get(ctx, targetID)
}

// Delete hard-deletes a player. Their bookings, events and messages are left in place.
// Admin only (enforced by the route).
func (s *PlayerService) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Player{}, id)
	if res.Error != nil {
		return internal("delete player", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Player not found")
	}
	return nil
}

// checkSkill validates a skill level against the 1..10 scale.
func checkSkill(level int) error {
	if level < minSkillLevel || level > maxSkillLevel {
		return validation("skill_level must be between 1 and 10")
	}
	return nil
}

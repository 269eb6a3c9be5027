// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The schema itself is owned by the SQL migrations in internal/database/migrations; the
// struct tags here only tell GORM which column each field maps to.
//
// The data model represents a pickup-football platform where:
//   - Players register with a phone number and describe their zone and skill level
//   - Turfs (venues) are booked by the hour through Bookings
//   - Players host Events (pickup games) that other players join via EventPlayer rows
//   - Players connect with each other (Connection) and, once accepted, exchange Messages
package models

import "time"

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. The values are stored verbatim in the database.

// BookingStatus tracks whether a turf booking still holds its slot.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed" // Holds the (turf, date, slot) triple
	BookingStatusCancelled BookingStatus = "cancelled" // Soft-deleted; kept for history, frees the slot
)

// ConnectionStatus tracks a connection request between two players.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"  // Waiting for the recipient to respond
	ConnectionStatusAccepted ConnectionStatus = "accepted" // Both players may now message each other
	ConnectionStatusRejected ConnectionStatus = "rejected" // Recipient declined
)

// EventStatus tracks the lifecycle of a pickup game.
//
//	open ──join reaches capacity──> full ──leave──> open
//	open|full ──cancel──> cancelled (terminal)
type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusFull      EventStatus = "full"
	EventStatusCancelled EventStatus = "cancelled"
)

// EventPlayerRole distinguishes the host of an event from the players who joined it.
// The host is enrolled automatically on create and can never leave (only cancel).
type EventPlayerRole string

const (
	EventPlayerRoleHost   EventPlayerRole = "host"
	EventPlayerRolePlayer EventPlayerRole = "player"
)

// Slots is the fixed, ordered set of hourly labels a turf can be booked for on any date.
var Slots = []string{"4:00 PM", "5:00 PM", "6:00 PM", "7:00 PM", "8:00 PM", "9:00 PM"}

// IsValidSlot reports whether s is one of the bookable hourly labels.
func IsValidSlot(s string) bool {
	for _, slot := range Slots {
		if slot == s {
			return true
		}
	}
	return false
}

// Event capacity bounds (inclusive). filled_slots starts at 1 because the host counts.
const (
	MinEventSlots = 2
	MaxEventSlots = 22
)

// --- Models ---
// Each struct below maps to a database table. GORM uses the struct name (snake_cased and
// pluralized) as the table name by default: Player -> players, EventPlayer -> event_players.
// Its pluralizer turns "turf" into "turves", so Turf names its table explicitly.

// Player is a registered user. Admins are players with IsAdmin set; they are hidden
// from public listings and from matchmaking.
type Player struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Phone        string    `gorm:"not null;uniqueIndex" json:"phone"` // Exactly 10 digits; globally unique
	PasswordHash string    `gorm:"not null" json:"-"`                 // bcrypt hash; never serialized
	Zone         string    `gorm:"not null" json:"zone"`              // Free-text locality used for matching
	SkillLevel   int       `gorm:"not null" json:"skill_level"`       // 1..10, enforced by a CHECK constraint
	Position     string    `gorm:"not null;default:'Any'" json:"position"`
	Bio          string    `gorm:"not null;default:''" json:"bio"`
	AvatarURL    string    `gorm:"column:avatar_url;not null;default:''" json:"avatar_url"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Turf is a bookable venue. Turfs have no owner; admins manage them.
type Turf struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	Location     string `gorm:"not null" json:"location"`
	PricePerHour int    `gorm:"not null" json:"price_per_hour"`
	Formats      string `gorm:"not null;default:'5v5'" json:"formats"` // Free-text list like "5v5, 7v7"
	Emoji        string `gorm:"not null" json:"emoji"`
	Description  string `gorm:"not null;default:''" json:"description"`
}

// TableName overrides GORM's plural ("turves") to match the migrations.
func (Turf) TableName() string { return "turfs" }

// Booking reserves one hourly slot at a turf on a given date.
// At most one confirmed booking may exist per (turf, date, slot); the partial unique
// index idx_bookings_confirmed_slot enforces that in the database.
type Booking struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	PlayerID  int64         `gorm:"not null" json:"player_id"`
	TurfID    int64         `gorm:"not null" json:"turf_id"`
	Date      string        `gorm:"not null" json:"date"` // Calendar date "YYYY-MM-DD"
	Slot      string        `gorm:"not null" json:"slot"` // One of Slots
	Status    BookingStatus `gorm:"not null;default:'confirmed'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Connection is a directed request from one player to another.
// Only one row may exist per unordered pair of players.
type Connection struct {
	ID           int64            `gorm:"primaryKey" json:"id"`
	FromPlayerID int64            `gorm:"not null" json:"from_player_id"`
	ToPlayerID   int64            `gorm:"not null" json:"to_player_id"`
	Status       ConnectionStatus `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Event is a player-hosted pickup game with a fixed capacity.
// TurfID is optional: games can be organised before a venue is booked.
type Event struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	HostID      int64       `gorm:"not null" json:"host_id"`
	TurfID      *int64      `json:"turf_id"` // Pointer = nullable
	Title       string      `gorm:"not null" json:"title"`
	Format      string      `gorm:"not null;default:'5v5'" json:"format"`
	Date        string      `gorm:"not null" json:"date"` // "YYYY-MM-DD"
	Time        string      `gorm:"not null" json:"time"` // "HH:MM", 24-hour
	TotalSlots  int         `gorm:"not null" json:"total_slots"`
	FilledSlots int         `gorm:"not null;default:1" json:"filled_slots"`
	Status      EventStatus `gorm:"not null;default:'open'" json:"status"`
	Description string      `gorm:"not null;default:''" json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EventPlayer links a Player to an Event. The unique index on (event_id, player_id)
// prevents a player from joining the same event twice.
type EventPlayer struct {
	ID       int64           `gorm:"primaryKey" json:"id"`
	EventID  int64           `gorm:"not null" json:"event_id"`
	PlayerID int64           `gorm:"not null" json:"player_id"`
	Role     EventPlayerRole `gorm:"not null;default:'player'" json:"role"`
	JoinedAt time.Time       `gorm:"autoCreateTime" json:"joined_at"`
}

// Message is a direct message between two connected players.
// Messages are append-only: there is no edit or delete.
type Message struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	FromID    int64     `gorm:"not null" json:"from_id"`
	ToID      int64     `gorm:"not null" json:"to_id"`
	Content   string    `gorm:"not null" json:"content"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
